package models

// Account is an administrator credential held in configuration
type Account struct {
	ID           int
	Username     string
	PasswordHash string
}

// Identity is the authenticated subject carried by a bearer token
type Identity struct {
	AccountID int    `json:"id"`
	Username  string `json:"username"`
}
