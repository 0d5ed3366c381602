package dto

import (
	"strings"
	"time"

	"resort/internal/domains/promocode/model"
	"resort/shared"
	gDto "resort/shared/dto"
	gModel "resort/shared/model"
	"resort/shared/timezone"

	"github.com/google/uuid"
)

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type CreatePromoCodeRequest struct {
	Code      string     `json:"code"       validate:"required,max=50"`
	Type      string     `json:"type"       validate:"required,oneof=PERCENT FLAT"`
	Value     float64    `json:"value"      validate:"required,gt=0"`
	IsActive  *bool      `json:"is_active"  validate:"omitempty"`
	StartsAt  *time.Time `json:"starts_at"  validate:"omitempty"`
	ExpiresAt *time.Time `json:"expires_at" validate:"omitempty"`
	MaxUses   *int       `json:"max_uses"   validate:"omitempty,min=0"`
}

func (c *CreatePromoCodeRequest) ToModel(user string) model.PromoCode {
	active := true
	if c.IsActive != nil {
		active = *c.IsActive
	}

	return model.PromoCode{
		ID:        uuid.NewString(),
		Code:      NormalizeCode(c.Code),
		Type:      c.Type,
		Value:     c.Value,
		IsActive:  active,
		StartsAt:  c.StartsAt,
		ExpiresAt: c.ExpiresAt,
		MaxUses:   c.MaxUses,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdatePromoCodeRequest struct {
	Code      string     `db:"code"       json:"code"       validate:"omitempty,max=50"`
	Type      string     `db:"type"       json:"type"       validate:"omitempty,oneof=PERCENT FLAT"`
	Value     *float64   `db:"value"      json:"value"      validate:"omitempty,gt=0"`
	IsActive  *bool      `db:"is_active"  json:"is_active"  validate:"omitempty"`
	StartsAt  *time.Time `db:"starts_at"  json:"starts_at"  validate:"omitempty"`
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at" validate:"omitempty"`
	MaxUses   *int       `db:"max_uses"   json:"max_uses"   validate:"omitempty,min=0"`
}

type PromoCodeResponse struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	Type      string     `json:"type"`
	Value     float64    `json:"value"`
	IsActive  bool       `json:"is_active"`
	StartsAt  *time.Time `json:"starts_at"`
	ExpiresAt *time.Time `json:"expires_at"`
	MaxUses   *int       `json:"max_uses"`
	UsedCount int        `json:"used_count"`
	gDto.Metadata
}

func (r *PromoCodeResponse) FromModel(model model.PromoCode) {
	r.ID = model.ID
	r.Code = model.Code
	r.Type = model.Type
	r.Value = model.Value
	r.IsActive = model.IsActive
	r.StartsAt = model.StartsAt
	r.ExpiresAt = model.ExpiresAt
	r.MaxUses = model.MaxUses
	r.UsedCount = model.UsedCount
	r.Metadata.FromModel(model.Metadata)
}

type GetPromoCodesResponse struct {
	PromoCodes []PromoCodeResponse `json:"promo_codes"`
	TotalPage  int                 `json:"total_page"`
	TotalData  int                 `json:"total_data"`
}

func (r *GetPromoCodesResponse) FromModels(models []model.PromoCode, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.PromoCodes = make([]PromoCodeResponse, len(models))
	for i, mod := range models {
		r.PromoCodes[i].FromModel(mod)
	}
}

type ValidatePromoCodeRequest struct {
	Code       string  `json:"code"        validate:"required"`
	BaseAmount float64 `json:"base_amount" validate:"gte=0"`
}

// Discount is the outcome of a successful validation.
type Discount struct {
	PromoCodeID string  `json:"-"`
	Code        string  `json:"code"`
	Type        string  `json:"type"`
	Value       float64 `json:"value"`
	Discount    float64 `json:"discount"`
	PayableBase float64 `json:"payable_base"`
}
