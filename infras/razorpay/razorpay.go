package razorpay

//go:generate go run go.uber.org/mock/mockgen -source=./razorpay.go -destination=./mocks/razorpay_mock.go -package=mocks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"resort/config"
	"resort/infras/otel"
	"resort/shared/constant"

	rzp "github.com/razorpay/razorpay-go"
	"github.com/rs/zerolog/log"
)

const signatureSeparator = "|"

type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

type Order struct {
	ID       string
	Amount   int64
	Currency string
	Status   string
}

type PaymentDetail struct {
	ID      string
	OrderID string
	Method  string
	Email   string
	Contact string
	Status  string
}

// Gateway wraps the Razorpay order and payment APIs.
type Gateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
	FetchPayment(ctx context.Context, paymentID string) (PaymentDetail, error)
}

type gatewayImpl struct {
	client *rzp.Client
	cfg    *config.Config
	otel   otel.Otel
}

func New(cfg *config.Config, otel otel.Otel) Gateway {
	if cfg.External.Razorpay.KeyID == "" {
		log.Warn().Msg("Razorpay key id is not configured")
	}

	return &gatewayImpl{
		client: rzp.NewClient(cfg.External.Razorpay.KeyID, cfg.External.Razorpay.KeySecret),
		cfg:    cfg,
		otel:   otel,
	}
}

func (g *gatewayImpl) KeyID() string {
	return g.cfg.External.Razorpay.KeyID
}

func (g *gatewayImpl) CreateOrder(ctx context.Context, req OrderRequest) (res Order, err error) {
	_, scope := g.otel.NewScope(ctx, constant.OtelPaymentScopeName, constant.OtelPaymentScopeName+".CreateOrder")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("receipt", req.Receipt)

	notes := map[string]interface{}{}
	for key, value := range req.Notes {
		notes[key] = value
	}

	body, err := g.client.Order.Create(map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes":    notes,
	}, nil)
	if err != nil {
		log.Error().Err(err).Str("receipt", req.Receipt).Msg("failed to create razorpay order")

		return res, fmt.Errorf("failed to create razorpay order: %w", err)
	}

	res = Order{
		ID:       stringField(body, "id"),
		Amount:   int64Field(body, "amount"),
		Currency: stringField(body, "currency"),
		Status:   stringField(body, "status"),
	}

	if res.ID == "" {
		return res, fmt.Errorf("razorpay order response has no id")
	}

	return res, nil
}

func (g *gatewayImpl) FetchPayment(ctx context.Context, paymentID string) (res PaymentDetail, err error) {
	_, scope := g.otel.NewScope(ctx, constant.OtelPaymentScopeName, constant.OtelPaymentScopeName+".FetchPayment")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	body, err := g.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return res, fmt.Errorf("failed to fetch razorpay payment: %w", err)
	}

	return PaymentDetail{
		ID:      stringField(body, "id"),
		OrderID: stringField(body, "order_id"),
		Method:  stringField(body, "method"),
		Email:   stringField(body, "email"),
		Contact: stringField(body, "contact"),
		Status:  stringField(body, "status"),
	}, nil
}

// Signature returns hex(HMAC-SHA256(secret, orderID|paymentID)).
func Signature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + signatureSeparator + paymentID))

	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares the client supplied signature in constant time.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	if secret == "" || orderID == "" || paymentID == "" || signature == "" {
		return false
	}

	expected := Signature(secret, orderID, paymentID)

	return hmac.Equal([]byte(expected), []byte(signature))
}

func stringField(body map[string]interface{}, key string) string {
	value, _ := body[key].(string)

	return value
}

func int64Field(body map[string]interface{}, key string) int64 {
	switch value := body[key].(type) {
	case float64:
		return int64(value)
	case int64:
		return value
	case int:
		return int64(value)
	default:
		return 0
	}
}
