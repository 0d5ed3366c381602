package promocode_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"resort/infras/otel/mocks"
	"resort/internal/domains/promocode/model/dto"
	serviceMocks "resort/internal/domains/promocode/service/mocks"
	"resort/internal/handlers/promocode"
	"resort/shared/failure"
)

func TestHandler_ValidatePromoCode(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setupMock func(svc *serviceMocks.MockPromoCode)
		wantCode  int
		wantBody  string
	}{
		{
			name: "percent discount",
			body: `{"code":"monsoon10","base_amount":1000}`,
			setupMock: func(svc *serviceMocks.MockPromoCode) {
				svc.EXPECT().
					ValidateForBaseAmount(gomock.Any(), "monsoon10", float64(1000)).
					Return(dto.Discount{Code: "MONSOON10", Discount: 100, PayableBase: 900}, nil)
			},
			wantCode: http.StatusOK,
			wantBody: `"discount":100`,
		},
		{
			name: "expired",
			body: `{"code":"OLD","base_amount":1000}`,
			setupMock: func(svc *serviceMocks.MockPromoCode) {
				svc.EXPECT().
					ValidateForBaseAmount(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(dto.Discount{}, failure.BadRequestFromString("Promo code has expired"))
			},
			wantCode: http.StatusBadRequest,
			wantBody: "expired",
		},
		{
			name:      "missing code",
			body:      `{"base_amount":1000}`,
			setupMock: func(*serviceMocks.MockPromoCode) {},
			wantCode:  http.StatusBadRequest,
			wantBody:  "code is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := serviceMocks.NewMockPromoCode(gomock.NewController(t))
			tt.setupMock(svc)

			handler := promocode.New(svc, mocks.NewOtel())
			router := chi.NewRouter()
			router.Route("/api", handler.Router)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/promo-codes/validate", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantCode, recorder.Code)
			assert.Contains(t, recorder.Body.String(), tt.wantBody)
		})
	}
}

func TestHandler_CreatePromoCode(t *testing.T) {
	svc := serviceMocks.NewMockPromoCode(gomock.NewController(t))
	handler := promocode.New(svc, mocks.NewOtel())

	router := chi.NewRouter()
	router.Route("/admin-api", handler.AdminRouter)

	svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(failure.Conflict("promo code already exists"))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/admin-api/promo-codes/", strings.NewReader(`{"code":"X","type":"FLAT","value":500}`)))
	assert.Equal(t, http.StatusConflict, recorder.Code)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/admin-api/promo-codes/", strings.NewReader(`{"code":"X","type":"BOGO","value":500}`)))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
