package dashboard

import (
	"fmt"
	"reflect"
	"strings"

	"cherryblossom/internal/httpx"
	"cherryblossom/internal/results"
	"cherryblossom/internal/transform"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name, _, _ := strings.Cut(f.Tag.Get("query"), ","); name != "" && name != "-" {
			return name
		}
		return f.Name
	})

	validate.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		for _, g := range results.Genders {
			if fl.Field().String() == g {
				return true
			}
		}
		return false
	})
	validate.RegisterValidation("age_group", func(fl validator.FieldLevel) bool {
		return results.IsAgeGroup(fl.Field().String())
	})
	validate.RegisterValidation("census_region", func(fl validator.FieldLevel) bool {
		return transform.IsRegion(fl.Field().String())
	})
}

// ValidateStruct maps validation failures to response details.
func ValidateStruct(s interface{}) []httpx.ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []httpx.ErrorDetail{{Field: "", Message: err.Error()}}
	}

	var details []httpx.ErrorDetail
	for _, err := range verrs {
		field := err.Field()
		param := err.Param()

		var message string
		switch err.Tag() {
		case "gender":
			message = fmt.Sprintf("%s must be one of %s", field, strings.Join(results.Genders, ", "))
		case "age_group":
			message = fmt.Sprintf("%s must be one of %s", field, strings.Join(results.AgeGroups, ", "))
		case "census_region":
			message = fmt.Sprintf("%s must be one of %s", field, strings.Join(transform.Regions, ", "))
		case "gt", "gte":
			message = fmt.Sprintf("%s must be at least %s", field, param)
		case "lte", "max":
			message = fmt.Sprintf("%s must be at most %s", field, param)
		case "len":
			message = fmt.Sprintf("%s must be %s characters", field, param)
		case "alpha":
			message = fmt.Sprintf("%s must contain letters only", field)
		case "oneof":
			message = fmt.Sprintf("%s must be one of %s", field, param)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}
		details = append(details, httpx.ErrorDetail{Field: field, Message: message})
	}
	return details
}
