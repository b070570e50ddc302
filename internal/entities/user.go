package entities

type User struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Phone        string `json:"phone,omitempty"`
	Plan         string `json:"plan"`
	Rol          string `json:"rol"`
}

// PublicUser is the projection returned by the auth endpoints (no phone, no hash).
type PublicUser struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Plan  string `json:"plan"`
	Rol   string `json:"rol"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Plan: u.Plan, Rol: u.Rol}
}
