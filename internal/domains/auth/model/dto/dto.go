package dto

import (
	"time"

	"resort/infras/jwt"
	userModel "resort/internal/domains/user/model"
	userDto "resort/internal/domains/user/model/dto"
	"resort/shared"
	"resort/shared/constant"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone"    validate:"omitempty,max=20"`
}

func (r *RegisterRequest) ToUserModel(hashedPassword string) userModel.User {
	return userModel.User{
		ID:       uuid.NewString(),
		Name:     r.Name,
		Email:    shared.NormalizeEmail(r.Email),
		Password: hashedPassword,
		Role:     constant.RoleUser,
		Phone:    r.Phone,
		Active:   true,
		Metadata: shared.NewMetadata(constant.ContextGuest),
	}
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateLastLoginRequest struct {
	LastLogin time.Time `db:"last_login" json:"last_login" validate:"required"`
}

// SessionResponse carries the signed session token; handlers also set it as a cookie.
type SessionResponse struct {
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expires_at"`
	User      userDto.UserResponse `json:"user"`
}

func (r *SessionResponse) FromToken(token *jwt.Token, user userModel.User) {
	r.Token = token.Value
	r.ExpiresAt = token.ExpiresAt
	r.User.FromModel(user)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type UpdatePasswordRequest struct {
	Password string `db:"password" json:"password" validate:"required,min=8"`
}
