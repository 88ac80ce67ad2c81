package dto

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

func GetValidator() *validator.Validate {
	return validate
}

// CookieFile is the on-disk credential shape: either a single "cookie"
// string or a browser export of name/value pairs.
type CookieFile struct {
	Cookie string `json:"cookie"`
}

type CookiePair struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// ValidateSubmit checks a submission before it hits the wire. An invalid
// submission is the caller's bug, not a transient remote error.
func ValidateSubmit(req SubmitAnswerRequest) error {
	return validate.Struct(req)
}
