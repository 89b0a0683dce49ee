package transform

import (
	"strconv"
	"strings"

	"cherryblossom/internal/results"
)

// ParseClock converts "H:MM:SS" or "MM:SS" to seconds.
func ParseClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}

// FormatClock renders seconds as H:MM:SS, or M:SS below an hour.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return strconv.Itoa(h) + ":" + pad2(m) + ":" + pad2(s)
	}
	return strconv.Itoa(m) + ":" + pad2(s)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func NormalizeGender(s string) string {
	switch g := strings.ToUpper(strings.TrimSpace(s)); g {
	case "":
		return results.GenderUnknown
	case results.GenderMale, results.GenderFemale, results.GenderOther:
		return g
	default:
		return results.GenderOther
	}
}

// parseOptionalInt returns nil for anything that is not a plain integer.
func parseOptionalInt(s string) *int {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func normalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// positiveOrNil drops values <= 0, and values above limit when limit > 0.
func positiveOrNil(v *int, limit int) *int {
	if v == nil || *v <= 0 || (limit > 0 && *v > limit) {
		return nil
	}
	return v
}
