package user

import "errors"

type ChangePasswordDTO struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password"     binding:"required,min=8,max=128,nefield=CurrentPassword"`
}

type ChangeUsernameDTO struct {
	Username string `json:"username" binding:"required,min=3,max=64,alphanum"`
	Password string `json:"password" binding:"required"`
}

type ChangeEmailDTO struct {
	Email    string `json:"email"    binding:"required,email,max=191"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileDTO struct {
	FullName *string `json:"full_name" binding:"omitempty,max=100"`
	Bio      *string `json:"bio"       binding:"omitempty,max=2000"`
}

var (
	ErrWrongPassword = errors.New("current password is incorrect")
	ErrTaken         = errors.New("already in use by another account")
)
