// Package validation validates configuration structs using struct tags
// (go-playground/validator) and reports failures as errors.AppError values.
//
//	type Config struct {
//	    Timeout time.Duration `validate:"gte=0"`
//	}
//	err := validation.Validate(cfg)
package validation
