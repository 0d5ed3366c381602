package payment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"resort/infras/otel/mocks"
	"resort/internal/domains/payment/model/dto"
	"resort/internal/domains/payment/service"
	serviceMocks "resort/internal/domains/payment/service/mocks"
	"resort/internal/handlers/payment"
	gDto "resort/shared/dto"
)

func newRouter(t *testing.T) (*serviceMocks.MockPayment, http.Handler) {
	svc := serviceMocks.NewMockPayment(gomock.NewController(t))
	handler := payment.New(svc, mocks.NewOtel())

	router := chi.NewRouter()
	router.Route("/api", handler.Router)
	router.Route("/admin-api", handler.AdminRouter)

	return svc, router
}

func TestHandler_CreateOrder(t *testing.T) {
	svc, router := newRouter(t)

	svc.EXPECT().
		CreateOrder(gomock.Any(), dto.CreateOrderRequest{BookingID: "7f1c0d52-3c1e-4c43-9d7a-0f7a0b3c9e11"}).
		Return(dto.OrderResponse{KeyID: "rzp_test", OrderID: "order_1", Amount: 1197000, Currency: "INR"}, nil)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/payments/order",
		strings.NewReader(`{"booking_id":"7f1c0d52-3c1e-4c43-9d7a-0f7a0b3c9e11"}`)))

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"amount":1197000`)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/payments/order", strings.NewReader(`{"booking_id":"nope"}`)))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandler_Verify(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setupMock func(svc *serviceMocks.MockPayment)
		wantCode  int
		wantBody  string
	}{
		{
			name: "confirmed",
			body: `{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"sig"}`,
			setupMock: func(svc *serviceMocks.MockPayment) {
				svc.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(dto.VerifyResponse{BookingID: "b1", Status: "CONFIRMED"}, nil)
			},
			wantCode: http.StatusOK,
			wantBody: `"status":"CONFIRMED"`,
		},
		{
			name: "tampered signature",
			body: `{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"forged"}`,
			setupMock: func(svc *serviceMocks.MockPayment) {
				svc.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(dto.VerifyResponse{}, service.ErrVerificationFailed)
			},
			wantCode: http.StatusBadRequest,
			wantBody: "Payment verification failed",
		},
		{
			name:      "missing signature",
			body:      `{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1"}`,
			setupMock: func(*serviceMocks.MockPayment) {},
			wantCode:  http.StatusBadRequest,
			wantBody:  "razorpay_signature is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := newRouter(t)
			tt.setupMock(svc)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/payments/verify", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantCode, recorder.Code)
			assert.Contains(t, recorder.Body.String(), tt.wantBody)
		})
	}
}

func TestHandler_GetPayments(t *testing.T) {
	svc, router := newRouter(t)

	svc.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup) (dto.GetPaymentsResponse, error) {
			assert.Len(t, filter.Filters, 2)

			return dto.GetPaymentsResponse{}, nil
		})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/admin-api/payments/?status=PAID&provider=RAZORPAY", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
}
