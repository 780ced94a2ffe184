package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/yusufsyaifudin/cyberhook/webhook"
)

var (
	v *validator.Validate
)

func init() {
	v = validator.New()

	// empty string passes, use it together with "required" when the value is mandatory
	err := v.RegisterValidation("discordwebhook", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || webhook.IsWebhookEndpointValid(s)
	})
	if err != nil {
		panic(err)
	}
}

func Validate(i interface{}) error {
	if i == nil {
		return fmt.Errorf("data to validate is nil")
	}

	return v.Struct(i)
}

// Var validates a single value using tag, i.e: Var("abc", "required,alphanum").
func Var(field interface{}, tag string) error {
	return v.Var(field, tag)
}
