package model

// User is an account record. Nothing in the request path authenticates
// against it yet; the password is stored exactly as given.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
}
