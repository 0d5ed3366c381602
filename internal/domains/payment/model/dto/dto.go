package dto

import (
	"resort/internal/domains/payment/model"
	"resort/shared"
	"resort/shared/constant"
	gDto "resort/shared/dto"
	"resort/shared/timezone"
)

type CreateOrderRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
}

type OrderResponse struct {
	KeyID     string `json:"key_id"`
	OrderID   string `json:"order_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	BookingID string `json:"booking_id"`
}

type VerifyRequest struct {
	OrderID   string `json:"razorpay_order_id"   validate:"required,max=100"`
	PaymentID string `json:"razorpay_payment_id" validate:"required,max=100"`
	Signature string `json:"razorpay_signature"  validate:"required,max=256"`
}

type VerifyResponse struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
	PaymentID string `json:"payment_id"`
}

type PaymentResponse struct {
	ID               string  `json:"id"`
	BookingID        string  `json:"booking_id"`
	Provider         string  `json:"provider"`
	Status           string  `json:"status"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	GatewayOrderID   string  `json:"gateway_order_id,omitempty"`
	GatewayPaymentID string  `json:"gateway_payment_id,omitempty"`
	Method           string  `json:"method,omitempty"`
	Reference        string  `json:"reference,omitempty"`
	PayerEmail       string  `json:"payer_email,omitempty"`
	PayerContact     string  `json:"payer_contact,omitempty"`
	PaidAt           string  `json:"paid_at,omitempty"`
	gDto.Metadata
}

func (r *PaymentResponse) FromModel(model model.Payment) {
	r.ID = model.ID
	r.BookingID = model.BookingID
	r.Provider = model.Provider
	r.Status = model.Status
	r.Amount = model.Amount
	r.Currency = model.Currency
	r.GatewayOrderID = model.GatewayOrderID
	r.GatewayPaymentID = model.GatewayPaymentID
	r.Method = model.Method
	r.Reference = model.Reference
	r.PayerEmail = model.PayerEmail
	r.PayerContact = model.PayerContact

	r.PaidAt = constant.Empty
	if model.PaidAt != nil {
		r.PaidAt = timezone.Format(*model.PaidAt, constant.DateFormat)
	}

	r.Metadata.FromModel(model.Metadata)
}

type GetPaymentsResponse struct {
	Payments  []PaymentResponse `json:"payments"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetPaymentsResponse) FromModels(models []model.Payment, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Payments = make([]PaymentResponse, len(models))
	for i, mod := range models {
		r.Payments[i].FromModel(mod)
	}
}
