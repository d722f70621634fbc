package models

// User represents a survey respondent.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         *string
	ExternalID   *string
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID    int64   `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
	}
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	Token string     `json:"token"`
	User  UserPublic `json:"user"`
}
