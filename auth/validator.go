package auth

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RegisterRequest is the body of POST /add_user.
// Usernames cannot hold the payment separators ',' and '_' nor the ':'
// used in storage keys, otherwise nobody could pay them.
type RegisterRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Username       string `json:"username" validate:"required,max=64,excludesall=:_0x2C"`
	Password       string `json:"password" validate:"required,min=8,max=72"`
	ProfilePicture string `json:"profilePicture" validate:"omitempty,max=2048"`
}

func ValidateRegister(req RegisterRequest) error {
	return validate.Struct(req)
}
