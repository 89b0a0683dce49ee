package transform

// US Census Bureau regions and divisions by postal code.
// Source: https://www2.census.gov/geo/pdfs/maps-data/maps/reference/us_regdiv.pdf

const (
	RegionNortheast = "Northeast"
	RegionMidwest   = "Midwest"
	RegionSouth     = "South"
	RegionWest      = "West"
	RegionOther     = "Other"
	RegionMilitary  = "U.S. Military"
)

// Regions lists the census regions a US record can fall in.
var Regions = []string{RegionNortheast, RegionMidwest, RegionSouth, RegionWest, RegionOther}

type censusArea struct {
	region   string
	division string
}

var censusDivisions = map[string][]string{
	"New England":        {"CT", "ME", "MA", "NH", "RI", "VT"},
	"Middle Atlantic":    {"NJ", "NY", "PA"},
	"East North Central": {"IL", "IN", "MI", "OH", "WI"},
	"West North Central": {"IA", "KS", "MN", "MO", "NE", "ND", "SD"},
	"South Atlantic":     {"DE", "FL", "GA", "MD", "NC", "SC", "VA", "DC", "WV"},
	"East South Central": {"AL", "KY", "MS", "TN"},
	"West South Central": {"AR", "LA", "OK", "TX"},
	"Mountain":           {"AZ", "CO", "ID", "MT", "NV", "NM", "UT", "WY"},
	"Pacific":            {"AK", "CA", "HI", "OR", "WA"},
}

var divisionRegion = map[string]string{
	"New England":        RegionNortheast,
	"Middle Atlantic":    RegionNortheast,
	"East North Central": RegionMidwest,
	"West North Central": RegionMidwest,
	"South Atlantic":     RegionSouth,
	"East South Central": RegionSouth,
	"West South Central": RegionSouth,
	"Mountain":           RegionWest,
	"Pacific":            RegionWest,
}

var byState = func() map[string]censusArea {
	m := make(map[string]censusArea)
	for division, states := range censusDivisions {
		for _, st := range states {
			m[st] = censusArea{region: divisionRegion[division], division: division}
		}
	}
	return m
}()

var militaryCodes = map[string]bool{"AA": true, "AE": true, "AP": true}

var localStates = map[string]bool{"DC": true, "MD": true, "VA": true}

// IsMilitary reports whether state is an armed-forces postal code.
func IsMilitary(state string) bool {
	return militaryCodes[normalizeCode(state)]
}

func IsLocal(state string) bool {
	return localStates[normalizeCode(state)]
}

// RegionFor returns the census region of a state code, "" for an empty code.
func RegionFor(state string) string {
	state = normalizeCode(state)
	switch {
	case state == "":
		return ""
	case militaryCodes[state]:
		return RegionMilitary
	}
	if a, ok := byState[state]; ok {
		return a.region
	}
	return RegionOther
}

// DivisionFor returns the census division of a state code, "" for an empty code.
func DivisionFor(state string) string {
	state = normalizeCode(state)
	switch {
	case state == "":
		return ""
	case militaryCodes[state]:
		return RegionMilitary
	}
	if a, ok := byState[state]; ok {
		return a.division
	}
	return RegionOther
}

func IsRegion(s string) bool {
	for _, r := range Regions {
		if r == s {
			return true
		}
	}
	return false
}
