package service

import (
	"errors"
	"fmt"
)

var (
	ErrSecretNotFound = errors.New("no secret stored for user")
	// ErrAmbiguous means more than one secret is stored for a user. This is an
	// integrity fault, never a user error.
	ErrAmbiguous = errors.New("multiple secrets stored for user")
	ErrStorage   = errors.New("secret storage failure")

	ErrHash                = errors.New("credential hashing failed")
	ErrInvalidDigest       = errors.New("invalid digest format")
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")

	ErrInvalidSessionToken = errors.New("invalid session token")
)

// Messages returned to clients.
const (
	MsgLastNameEmpty      = "Last name cannot be empty"
	MsgFirstNameEmpty     = "First name cannot be empty"
	MsgUsernameEmpty      = "Username cannot be empty"
	MsgEmailEmpty         = "Email cannot be empty"
	MsgPasswordEmpty      = "Password cannot be empty"
	MsgPasswordWeak       = "Password is too weak"
	MsgUsernameTaken      = "Username is already taken"
	MsgEmailTaken         = "Email is already taken"
	MsgInvalidCredentials = "Your credentials are wrong"
	MsgInternal           = "Internal server error"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindInvalidCredentials
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInvalidCredentials:
		return "invalid_credentials"
	default:
		return "internal"
	}
}

// Error is the only error type AuthService returns. Message is safe to show
// to a client; Err carries the cause for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func invalidCredentials(cause error) *Error {
	return &Error{Kind: KindInvalidCredentials, Message: MsgInvalidCredentials, Err: cause}
}

func internalError(cause error) *Error {
	return &Error{Kind: KindInternal, Message: MsgInternal, Err: cause}
}

// KindOf returns the kind of a service error, or KindInternal for anything else.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
