package commerce

import (
	"fmt"
	"strconv"

	validator "github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks an upstream order at the boundary so downstream shaping can
// rely on the identifier and currency being present.
func Validate(o Order) error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
