package results

// AgeGroups are the bucket labels, youngest first.
var AgeGroups = []string{
	"0-19", "20-24", "25-29", "30-34", "35-39", "40-44", "45-49",
	"50-54", "55-59", "60-64", "65-69", "70-74", "75-79", "80+",
}

// upper bounds (inclusive) of each bucket in AgeGroups
var ageGroupUpper = []int{19, 24, 29, 34, 39, 44, 49, 54, 59, 64, 69, 74, 79, 100}

// AgeGroupFor returns the bucket for age, or "" when age is outside (0, 100].
func AgeGroupFor(age int) string {
	if age <= 0 {
		return ""
	}
	for i, upper := range ageGroupUpper {
		if age <= upper {
			return AgeGroups[i]
		}
	}
	return ""
}

func IsAgeGroup(label string) bool {
	for _, g := range AgeGroups {
		if g == label {
			return true
		}
	}
	return false
}
