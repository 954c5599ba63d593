package models

// User is a row in the users table. End-user credit accounts and admin
// logins share it; lazily-created credit accounts have no email/password.
type User struct {
	ID        string  `json:"id" db:"id"`
	Email     *string `json:"email,omitempty" db:"email"`
	Password  *string `json:"-" db:"password"` // Never return password in JSON
	Name      string  `json:"name" db:"name"`
	Role      string  `json:"role" db:"role"` // "user" or "admin"
	Credits   int     `json:"credits" db:"credits"`
	CreatedAt int64   `json:"created_at" db:"created_at"`
	UpdatedAt int64   `json:"updated_at" db:"updated_at"`
}

type UserResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Credits int    `json:"credits"`
}

func (u *User) ToUserResponse() UserResponse {
	resp := UserResponse{
		ID:      u.ID,
		Name:    u.Name,
		Role:    u.Role,
		Credits: u.Credits,
	}
	if u.Email != nil {
		resp.Email = *u.Email
	}
	return resp
}
