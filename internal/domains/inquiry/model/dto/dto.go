package dto

import (
	"strings"

	"resort/internal/domains/inquiry/model"
	"resort/shared"
	"resort/shared/constant"
	gDto "resort/shared/dto"

	"github.com/google/uuid"
)

type CreateInquiryRequest struct {
	Name    string `json:"name"    validate:"required,max=100"`
	Email   string `json:"email"   validate:"required,email,max=100"`
	Phone   string `json:"phone"   validate:"omitempty,max=20"`
	Message string `json:"message" validate:"required,max=5000"`
}

func (r *CreateInquiryRequest) ToModel() model.Inquiry {
	return model.Inquiry{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(r.Name),
		Email:    shared.NormalizeEmail(r.Email),
		Phone:    strings.TrimSpace(r.Phone),
		Message:  strings.TrimSpace(r.Message),
		Status:   model.StatusUnread,
		Metadata: shared.NewMetadata(constant.ContextGuest),
	}
}

type InquiryResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message"`
	Status  string `json:"status"`
	gDto.Metadata
}

func (r *InquiryResponse) FromModel(model model.Inquiry) {
	r.ID = model.ID
	r.Name = model.Name
	r.Email = model.Email
	r.Phone = model.Phone
	r.Message = model.Message
	r.Status = model.Status
	r.Metadata.FromModel(model.Metadata)
}

type GetInquiriesResponse struct {
	Inquiries []InquiryResponse `json:"inquiries"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetInquiriesResponse) FromModels(models []model.Inquiry, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Inquiries = make([]InquiryResponse, len(models))
	for i, mod := range models {
		r.Inquiries[i].FromModel(mod)
	}
}
