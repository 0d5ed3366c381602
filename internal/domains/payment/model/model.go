package model

import (
	"time"

	"resort/shared/model"
)

const (
	TableName  = "payments"
	EntityName = "payment"

	FieldID               = "id"
	FieldBookingID        = "booking_id"
	FieldProvider         = "provider"
	FieldStatus           = "status"
	FieldGatewayOrderID   = "gateway_order_id"
	FieldGatewayPaymentID = "gateway_payment_id"
	FieldGatewaySignature = "gateway_signature"
	FieldMethod           = "method"
	FieldPayerEmail       = "payer_email"
	FieldPayerContact     = "payer_contact"
	FieldPaidAt           = "paid_at"
)

const (
	ProviderRazorpay = "RAZORPAY"
	ProviderOffline  = "OFFLINE"

	StatusCreated = "CREATED"
	StatusPaid    = "PAID"
)

type Payment struct {
	ID               string     `db:"id"`
	BookingID        string     `db:"booking_id"`
	Provider         string     `db:"provider"`
	Status           string     `db:"status"`
	Amount           float64    `db:"amount"`
	Currency         string     `db:"currency"`
	GatewayOrderID   string     `db:"gateway_order_id"`
	GatewayPaymentID string     `db:"gateway_payment_id"`
	GatewaySignature string     `db:"gateway_signature"`
	Method           string     `db:"method"`
	Reference        string     `db:"reference"`
	PayerEmail       string     `db:"payer_email"`
	PayerContact     string     `db:"payer_contact"`
	PaidAt           *time.Time `db:"paid_at"`
	model.Metadata
}
