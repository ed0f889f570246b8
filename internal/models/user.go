package models

import "time"

// User is the stored user document. Hash is never sent to a client.
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Emails    []string  `json:"emails"`
	Username  string    `json:"username"`
	Hash      string    `json:"hash"`
	CreatedAt time.Time `json:"created_at"`
}

// PrimaryEmail returns the first registered email, or "" if none.
func (u *User) PrimaryEmail() string {
	if len(u.Emails) == 0 {
		return ""
	}
	return u.Emails[0]
}

// ToUserInfo maps the document to the projection returned after registration.
func (u *User) ToUserInfo() *UserInfo {
	return &UserInfo{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Email:     u.PrimaryEmail(),
	}
}

// ToLoggedUser maps the document to the projection returned after login.
func (u *User) ToLoggedUser() *LoggedUser {
	return &LoggedUser{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Email:     u.PrimaryEmail(),
	}
}

// UserInfo is the reduced view of a user returned by registration.
type UserInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

// LoggedUser is the reduced view of a user returned by login.
type LoggedUser struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}
