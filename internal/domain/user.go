package domain

import "time"

// RoleAdmin marks users allowed into the admin dashboard.
const RoleAdmin = "admin"

// User is a registered account. PasswordHash holds a bcrypt hash and never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// AdminUser is the minimal user object handed out on admin login and kept as the session token.
type AdminUser struct {
	ID    int64  `json:"id" validate:"required,gt=0"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

// AdminCredentials is the admin login payload.
type AdminCredentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is returned by a successful admin login.
type LoginResult struct {
	Success bool      `json:"success"`
	User    AdminUser `json:"user"`
}
