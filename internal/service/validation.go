package service

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/academic-records-api/internal/models"
)

const (
	passwordTag = "password"
	roleTag     = "role"
)

// NewValidator returns a validator with the domain rules registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation(passwordTag, passwordValidation)
	_ = v.RegisterValidation(roleTag, func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})
	return v
}

// passwordValidation requires 6 to 50 characters with an upper case letter,
// a lower case letter and a digit or symbol.
func passwordValidation(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) < 6 || len(value) > 50 || strings.HasPrefix(value, ".") || strings.ContainsRune(value, '\n') {
		return false
	}
	var upper, lower, digitOrSymbol bool
	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r), unicode.IsPunct(r), unicode.IsSymbol(r), unicode.IsSpace(r):
			digitOrSymbol = true
		}
	}
	return upper && lower && digitOrSymbol
}
