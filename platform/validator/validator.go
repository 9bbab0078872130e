// Package validator wraps go-playground struct validation for the HTTP
// transport DTOs. The wrapper itself stays domain-agnostic; each module
// registers its own enum tags through Register at construction time.
package validator

import "github.com/go-playground/validator/v10"

// Validator validates transport structs against their `validate` tags.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New()}
}

// Struct validates a struct based on its validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single value against a tag expression.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// Register adds a custom validation tag. go-playground only rejects an empty
// tag or nil func, so a failure here is a programming error.
func (val *Validator) Register(tag string, fn validator.Func) {
	if err := val.v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// OneOf builds a validation func that accepts exactly the given values, for
// registering closed domain enums as named tags.
func OneOf(values ...string) validator.Func {
	allowed := make(map[string]struct{}, len(values))
	for _, v := range values {
		allowed[v] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		_, ok := allowed[fl.Field().String()]
		return ok
	}
}
