// Package forms holds the synchronous pre-checks run on user input before a
// session mutation reaches the network.
package forms

import (
	"errors"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/roadwatch/internal/client/models"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
)

const (
	MinPasswordLength = 6

	// DefaultRegion is used to parse phone numbers written without a
	// country prefix.
	DefaultRegion = "US"
)

type LoginForm struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (f LoginForm) Validate() error {
	return wrap(validation.ValidateStruct(&f,
		validation.Field(&f.Username, validation.By(notBlank)),
		validation.Field(&f.Password, validation.Required),
	))
}

type RegistrationForm struct {
	Username             string `json:"username"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"passwordConfirmation"`
	Email                string `json:"email"`
	Name                 string `json:"name"`
	PhoneNumber          string `json:"phoneNumber"`

	Region string `json:"-"`
}

func NewRegistrationForm(p models.RegistrationProfile, region string) RegistrationForm {
	return RegistrationForm{
		Username:             p.Username,
		Password:             p.Password,
		PasswordConfirmation: p.PasswordConfirmation,
		Email:                p.Email,
		Name:                 p.Name,
		PhoneNumber:          p.PhoneNumber,
		Region:               region,
	}
}

func (f RegistrationForm) Validate() error {
	return wrap(validation.ValidateStruct(&f,
		validation.Field(&f.Username, validation.By(notBlank)),
		validation.Field(&f.Password, passwordRules()...),
		validation.Field(&f.PasswordConfirmation,
			validation.Required,
			validation.By(stringEquals(f.Password, "passwords do not match")),
		),
		validation.Field(&f.Email, validation.Required, is.Email),
		validation.Field(&f.Name, validation.By(notBlank)),
		validation.Field(&f.PhoneNumber, validation.Required, validation.By(phoneNumber(f.Region))),
	))
}

// Profile returns the wire profile with surrounding whitespace trimmed from
// the identifying fields. Passwords are sent as typed.
func (f RegistrationForm) Profile() models.RegistrationProfile {
	return models.RegistrationProfile{
		Username:             strings.TrimSpace(f.Username),
		Password:             f.Password,
		PasswordConfirmation: f.PasswordConfirmation,
		Email:                strings.TrimSpace(f.Email),
		Name:                 strings.TrimSpace(f.Name),
		PhoneNumber:          strings.TrimSpace(f.PhoneNumber),
	}
}

type ResetPasswordForm struct {
	Email string `json:"email"`
}

func (f ResetPasswordForm) Validate() error {
	return wrap(validation.ValidateStruct(&f,
		validation.Field(&f.Email, validation.Required, is.Email),
	))
}

type ChangePasswordForm struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

func (f ChangePasswordForm) Validate() error {
	newRules := append(passwordRules(),
		validation.By(stringDiffers(f.CurrentPassword, "must differ from the current password")),
	)
	return wrap(validation.ValidateStruct(&f,
		validation.Field(&f.CurrentPassword, validation.Required),
		validation.Field(&f.NewPassword, newRules...),
		validation.Field(&f.ConfirmNewPassword,
			validation.Required,
			validation.By(stringEquals(f.NewPassword, "passwords do not match")),
		),
	))
}

type DeleteAccountForm struct {
	Password string `json:"password"`
}

func (f DeleteAccountForm) Validate() error {
	return wrap(validation.ValidateStruct(&f,
		validation.Field(&f.Password, validation.Required),
	))
}

// passwordRules: at least MinPasswordLength characters with at least one
// letter and one digit.
func passwordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.RuneLength(MinPasswordLength, 0),
		validation.By(letterAndDigit),
	}
}

func letterAndDigit(value interface{}) error {
	s, _ := value.(string)
	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return errors.New("must contain at least one letter and one digit")
	}
	return nil
}

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

func stringEquals(want, msg string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != want {
			return errors.New(msg)
		}
		return nil
	}
}

func stringDiffers(other, msg string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != "" && s == other {
			return errors.New(msg)
		}
		return nil
	}
}

func phoneNumber(region string) validation.RuleFunc {
	if region == "" {
		region = DefaultRegion
	}
	region = strings.ToUpper(region)
	return func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		num, err := phonenumbers.Parse(s, region)
		if err != nil || !phonenumbers.IsValidNumber(num) {
			return errors.New("must be a valid phone number")
		}
		return nil
	}
}
