package services

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

const emailShapeTag = "email_shape"

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NewValidator returns a validator with the email_shape tag registered.
// The tag accepts local@domain.tld and nothing stricter.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation(emailShapeTag, func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})
	return v
}

type credentialRules struct {
	v *validator.Validate
}

func (r credentialRules) email(email string) error {
	if err := r.v.Var(email, "required,"+emailShapeTag); err != nil {
		return fmt.Errorf("%w: email must look like local@domain.tld", common.ErrInvalidCredentialFormat)
	}
	if err := r.v.Var(email, fmt.Sprintf("max=%d", common.EmailMaxLength)); err != nil {
		return fmt.Errorf("%w: email must be at most %d characters long",
			common.ErrInvalidCredentialFormat, common.EmailMaxLength)
	}
	return nil
}

func (r credentialRules) password(password string) error {
	if err := r.v.Var(password, fmt.Sprintf("min=%d", common.PasswordMinLength)); err != nil {
		return fmt.Errorf("%w: password must be at least %d characters long",
			common.ErrInvalidCredentialFormat, common.PasswordMinLength)
	}
	return nil
}
