package models

// RegisterRequest is the input for user registration
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginRequest is the input for login. Target is a username or an email.
type LoginRequest struct {
	Target   string `json:"target"`
	Password string `json:"password"`
}

type MeResponse struct {
	Username string `json:"username"`
}

// ErrorResponse standard error format
type ErrorResponse struct {
	Error string `json:"error"`
}
