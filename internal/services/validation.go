package services

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// validEmail accepts a bare address only; display-name forms are rejected.
func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}
