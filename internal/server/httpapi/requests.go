package httpapi

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
)

var errInvalidMobile = errors.New("must be a valid phone number")

// normalizeMobile returns the E.164 form of raw. Numbers without a country
// code are read in region. Empty input stays empty.
func normalizeMobile(raw, region string) (string, error) {
	if raw == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", errInvalidMobile
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func mobileRule(region string) validation.Rule {
	return validation.By(func(value interface{}) error {
		v, isNil := validation.Indirect(value)
		if isNil {
			return nil
		}
		s, _ := v.(string)
		_, err := normalizeMobile(s, region)
		return err
	})
}

type registerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Mobile    string `json:"mobile"`
}

func (r registerRequest) Validate(region string) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 120), is.Email),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 72)),
		validation.Field(&r.Mobile, mobileRule(region)),
	)
}

type verifyRequest struct {
	Token string `json:"token"`
	OTP   string `json:"otp"`
}

func (r verifyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.OTP, validation.Required),
	)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Mobile    string `json:"mobile"`
	Role      string `json:"role"`
}

func (r createUserRequest) Validate(region string) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 120), is.Email),
		validation.Field(&r.Password, validation.Length(0, 72)),
		validation.Field(&r.FirstName, validation.Length(0, 50)),
		validation.Field(&r.LastName, validation.Length(0, 50)),
		validation.Field(&r.Mobile, mobileRule(region)),
	)
}

// updateUserRequest fields are optional; an empty password or role means
// "unchanged".
type updateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Mobile    *string `json:"mobile"`
	Password  *string `json:"password"`
	Role      *string `json:"role"`
}

func (r updateUserRequest) Validate(region string) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(0, 50)),
		validation.Field(&r.LastName, validation.Length(0, 50)),
		validation.Field(&r.Mobile, mobileRule(region)),
		validation.Field(&r.Password, validation.Length(0, 72)),
	)
}

type userResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Mobile    string `json:"mobile"`
	Role      string `json:"role"`
}

type loginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	User         loginUser `json:"user"`
}

type loginUser struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type registerResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}
