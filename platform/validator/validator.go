// Package validator wraps go-playground struct validation behind an
// injectable type so handlers don't reach for a package global.
package validator

import "github.com/go-playground/validator/v10"

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New()}
}

// Struct checks the `validate` tags on s and returns the underlying
// validator.ValidationErrors on failure.
func (val *Validator) Struct(s any) error {
	return val.v.Struct(s)
}
