package view

import (
	"regexp"
	"strings"
)

// emailPattern is a structural check only: something@something.something.
var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Validate checks every field independently and returns the messages for
// the ones that fail. An empty result means the form is acceptable.
func Validate(f Form) Errors {
	errs := Errors{}
	if strings.TrimSpace(f.Name) == "" {
		errs[FieldName] = "Name is required"
	}
	if strings.TrimSpace(f.Email) == "" || !emailPattern.MatchString(f.Email) {
		errs[FieldEmail] = "Valid email is required"
	}
	if strings.TrimSpace(f.Message) == "" {
		errs[FieldMessage] = "Message is required"
	}
	return errs
}
