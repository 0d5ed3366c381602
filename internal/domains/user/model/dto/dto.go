package dto

import (

	"resort/internal/domains/user/model"
	"resort/shared"
	"resort/shared/constant"
	gDto "resort/shared/dto"
	"resort/shared/timezone"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=USER ADMIN STAFF"`
	Phone    string `json:"phone"    validate:"omitempty,max=20"`
}

func (r *CreateUserRequest) ToModel(username string, hashedPassword string) model.User {
	role := r.Role
	if role == constant.Empty {
		role = constant.RoleUser
	}

	return model.User{
		ID:       uuid.NewString(),
		Name:     r.Name,
		Email:    shared.NormalizeEmail(r.Email),
		Password: hashedPassword,
		Role:     role,
		Phone:    r.Phone,
		Active:   true,
		Metadata: shared.NewMetadata(username),
	}
}

type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Phone     string `json:"phone,omitempty"`
	Active    bool   `json:"active"`
	LastLogin string `json:"last_login,omitempty"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(model model.User) {
	r.ID = model.ID
	r.Name = model.Name
	r.Email = model.Email
	r.Role = model.Role
	r.Phone = model.Phone
	r.Active = model.Active

	if model.LastLogin != nil {
		r.LastLogin = timezone.Format(*model.LastLogin, constant.DateFormat)
	}

	r.Metadata.FromModel(model.Metadata)
}

type UpdateUserRequest struct {
	Name   *string `db:"name"   json:"name,omitempty"   validate:"omitempty,max=100"`
	Phone  *string `db:"phone"  json:"phone,omitempty"  validate:"omitempty,max=20"`
	Role   *string `db:"role"   json:"role,omitempty"   validate:"omitempty,oneof=USER ADMIN STAFF"`
	Active *bool   `db:"active" json:"active,omitempty"`
}

type GetUsersResponse struct {
	Users     []UserResponse `json:"users"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetUsersResponse) FromModels(models []model.User, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Users = make([]UserResponse, len(models))
	for i, mod := range models {
		r.Users[i].FromModel(mod)
	}
}
