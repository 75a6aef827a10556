package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Whatsapp     string    `json:"whatsapp,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Whatsapp string `json:"whatsapp,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token,omitempty"`
}

// PublicProfile is the user view exposed to anyone; it carries the contact
// handle but never the email or password hash.
type PublicProfile struct {
	ID       int        `json:"id"`
	Username string     `json:"username"`
	Whatsapp string     `json:"whatsapp,omitempty"`
	Products []*Product `json:"products"`
}
