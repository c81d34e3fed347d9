package auth

import (
	"errors"
	"time"

	"github.com/jobboard/cms/internal/models"
)

// LoginDTO accepts either a username or an email.
type LoginDTO struct {
	Username string `json:"username" binding:"required_without=Email,omitempty,max=191"`
	Email    string `json:"email"    binding:"required_without=Username,omitempty,email,max=191"`
	Password string `json:"password" binding:"required,max=128"`
}

type loginResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	Admin     *models.AdminModel `json:"admin"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	IP        string    `json:"ip"`
	UA        string    `json:"ua"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Current   bool      `json:"current"`
}

// ErrInvalidCredentials hides whether the account or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")
