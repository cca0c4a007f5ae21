package models

// User is an analyst allowed to sign in to the dashboard.
// Users are declared in configuration, not stored by the backend.
type User struct {
	Email        string `json:"email" mapstructure:"email"`
	Name         string `json:"name" mapstructure:"name"`
	Role         string `json:"role" mapstructure:"role"`
	PasswordHash string `json:"-" mapstructure:"password_hash"` // bcrypt
}

// LoginRequest contains the credentials for authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that login credentials are present.
func (r *LoginRequest) Validate() map[string]string {
	errors := map[string]string{}

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}
