package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/foodlink/foodlink-api/internal/model"
)

// New creates a new validator instance with custom validations registered.
// This ensures consistent validation across the application and tests.
func New() *validator.Validate {
	v := validator.New()

	// Report json or form names in errors so messages match what the client sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})

	// notblank rejects whitespace-only strings
	_ = v.RegisterValidation("notblank", stringRule(func(s string) bool {
		return strings.TrimSpace(s) != ""
	}))

	// category accepts any spelling that normalizes to a known category ("Fresh Produce")
	_ = v.RegisterValidation("category", stringRule(model.IsCategory))

	_ = v.RegisterValidation("pickuphours", stringRule(func(s string) bool {
		_, ok := model.PickupHours[strings.ToLower(strings.TrimSpace(s))]
		return ok
	}))

	return v
}

func stringRule(ok func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return true // Not a string, let other validators handle it
		}
		return ok(fl.Field().String())
	}
}
