package errors

import (
	"errors"
)

var (
	ErrEmptyAuth          = errors.New("missing authorization")
	ErrEmptySubject       = errors.New("missing subject")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrCartNotFound       = errors.New("cart not found")
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOtpInvalid         = errors.New("otp is invalid or expired")
)
