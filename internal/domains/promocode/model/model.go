package model

import (
	"time"

	"resort/shared/model"
)

const (
	TableName  = "promo_codes"
	EntityName = "promo_code"

	FieldID        = "id"
	FieldCode      = "code"
	FieldType      = "type"
	FieldValue     = "value"
	FieldIsActive  = "is_active"
	FieldStartsAt  = "starts_at"
	FieldExpiresAt = "expires_at"
	FieldMaxUses   = "max_uses"
	FieldUsedCount = "used_count"
)

const (
	TypePercent = "PERCENT"
	TypeFlat    = "FLAT"
)

type PromoCode struct {
	ID        string     `db:"id"`
	Code      string     `db:"code"`
	Type      string     `db:"type"`
	Value     float64    `db:"value"`
	IsActive  bool       `db:"is_active"`
	StartsAt  *time.Time `db:"starts_at"`
	ExpiresAt *time.Time `db:"expires_at"`
	MaxUses   *int       `db:"max_uses"`
	UsedCount int        `db:"used_count"`
	model.Metadata
}

// Redeemable reports whether the code can be used at now.
func (p PromoCode) Redeemable(now time.Time) bool {
	if p.ID == "" || !p.IsActive {
		return false
	}

	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return false
	}

	if p.ExpiresAt != nil && now.After(*p.ExpiresAt) {
		return false
	}

	if p.MaxUses != nil && p.UsedCount >= *p.MaxUses {
		return false
	}

	return true
}
