package transport

import (
	"regexp"

	"business_services_hub/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// actionKeyPattern accepts snake_case keys. Whether a key is known is up to
// the executor, which reports unknown keys in its result.
var actionKeyPattern = regexp.MustCompile(`^[a-z][a-z_]{0,47}$`)

// RegisterValidations adds the bookings validation tags to val.
func RegisterValidations(val *validator.Validator) error {
	return val.RegisterValidation("booking_action", validateBookingAction)
}

func validateBookingAction(fl playground.FieldLevel) bool {
	return actionKeyPattern.MatchString(fl.Field().String())
}
