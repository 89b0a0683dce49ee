package timingsite

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Row is one finisher as shown on a results page. Values are kept as text.
type Row struct {
	Index         int
	Name          string
	Gender        string
	Age           string
	Race          string
	State         string
	Country       string
	OverallPlace  string
	GenderPlace   string
	AgeGroupPlace string
	FinishTime    string
	Pace          string
}

// Page is the parsed content of one results page.
type Page struct {
	Rows      []Row
	Skipped   int // disqualified or ineligible for scoring
	Malformed int
	HasNext   bool
}

const (
	rowSelector  = "tr.cbResultSetDataRow"
	nameSelector = "div[style*='font-weight:bold']"
	infoSelector = "div[style*='font-size: 16px']"
	nextLinkText = "[Next >>]"
)

// ParsePage extracts finisher rows from a results page document.
func ParsePage(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	page := &Page{}
	doc.Find(rowSelector).Each(func(i int, s *goquery.Selection) {
		html, _ := s.Html()
		if strings.Contains(html, "Disqualified") || strings.Contains(html, "Ineligible for Scoring") {
			page.Skipped++
			return
		}
		row, ok := parseRow(s)
		if !ok {
			page.Malformed++
			return
		}
		row.Index = i
		page.Rows = append(page.Rows, row)
	})

	page.HasNext = doc.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == nextLinkText
	}).Length() > 0

	return page, nil
}

// parseRow reads the name, the "G-AGE | ... | RACE | CITY ST COUNTRY" info
// line and the place/time cells of a row.
func parseRow(s *goquery.Selection) (Row, bool) {
	nameSel := s.Find(nameSelector).First()
	infoSel := s.Find(infoSelector).First()
	if nameSel.Length() == 0 || infoSel.Length() == 0 {
		return Row{}, false
	}

	parts := strings.Split(infoSel.Text(), "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 4 {
		return Row{}, false
	}

	genderAge := strings.Split(parts[0], "-")
	if len(genderAge) < 2 {
		return Row{}, false
	}

	cut := strings.LastIndex(parts[3], " ")
	if cut < 0 {
		return Row{}, false
	}
	cityState, country := parts[3][:cut], parts[3][cut+1:]
	state := cityState
	if len(state) > 2 {
		state = state[len(state)-2:]
	}

	cells := s.ChildrenFiltered("td")
	if cells.Length() < 6 {
		return Row{}, false
	}
	cell := func(i int) string {
		return strings.TrimSpace(cells.Eq(i).Text())
	}

	return Row{
		Name:          checkedText(strings.TrimSpace(nameSel.Text())),
		Gender:        checkedText(genderAge[0]),
		Age:           checkedText(genderAge[1]),
		Race:          checkedText(parts[2]),
		State:         checkedText(state),
		Country:       checkedText(country),
		OverallPlace:  checkedText(cell(1)),
		GenderPlace:   checkedText(cell(2)),
		AgeGroupPlace: checkedText(cell(3)),
		FinishTime:    checkedText(cell(4)),
		Pace:          checkedText(cell(5)),
	}, true
}

func checkedText(s string) string {
	if s == "" || s == ", " || s == "," {
		return ""
	}
	return s
}
