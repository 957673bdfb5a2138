package models

import "time"

type User struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WellFormed reports whether a decoded user record is usable as a session
// identity.
func (u *User) WellFormed() bool {
	return u != nil && u.Username != ""
}

// DisplayName prefers the first name, as the header greeting does.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type AuthResponse struct {
	Token   string `json:"token"`
	User    *User  `json:"user"`
	Message string `json:"message,omitempty"`
}

// Profile is what /api/profile answers. The backend may send only user_id.
type Profile struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username,omitempty"`
	User     *User  `json:"user,omitempty"`
}

func (p *Profile) ID() uint {
	if p.UserID != 0 {
		return p.UserID
	}
	if p.User != nil {
		return p.User.ID
	}
	return 0
}
