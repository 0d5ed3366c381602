package booking_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"resort/infras/otel/mocks"
	"resort/internal/domains/booking/model/dto"
	serviceMocks "resort/internal/domains/booking/service/mocks"
	"resort/internal/handlers/booking"
	"resort/shared/constant"
	gDto "resort/shared/dto"
	"resort/shared/failure"
)

func newRouter(t *testing.T) (*serviceMocks.MockBooking, http.Handler) {
	svc := serviceMocks.NewMockBooking(gomock.NewController(t))
	handler := booking.New(svc, mocks.NewOtel())

	router := chi.NewRouter()
	router.Route("/api", handler.Router)
	router.Route("/admin-api", handler.AdminRouter)

	return svc, router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(method, target, strings.NewReader(body)))

	return recorder
}

const validStay = `{"room_id":"7f1c0d52-3c1e-4c43-9d7a-0f7a0b3c9e11","check_in":"2026-12-20","check_out":"2026-12-22","adults":2,"children":1}`

func TestHandler_Quote(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setupMock func(svc *serviceMocks.MockBooking)
		wantCode  int
		wantBody  string
	}{
		{
			name: "success",
			body: validStay,
			setupMock: func(svc *serviceMocks.MockBooking) {
				svc.EXPECT().
					Quote(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req dto.QuoteRequest) (dto.QuoteResponse, error) {
						assert.Equal(t, 1, req.Children)

						return dto.QuoteResponse{Amount: 11970}, nil
					})
			},
			wantCode: http.StatusOK,
			wantBody: `"amount":11970`,
		},
		{
			name:      "bad meal plan",
			body:      `{"room_id":"7f1c0d52-3c1e-4c43-9d7a-0f7a0b3c9e11","check_in":"2026-12-20","check_out":"2026-12-22","adults":2,"meal_plans":[{"date":"2026-12-20","plan":"AP"}]}`,
			setupMock: func(*serviceMocks.MockBooking) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "no adults",
			body:      `{"room_id":"7f1c0d52-3c1e-4c43-9d7a-0f7a0b3c9e11","check_in":"2026-12-20","check_out":"2026-12-22"}`,
			setupMock: func(*serviceMocks.MockBooking) {},
			wantCode:  http.StatusBadRequest,
			wantBody:  "adults is required",
		},
		{
			name: "past check-in",
			body: validStay,
			setupMock: func(svc *serviceMocks.MockBooking) {
				svc.EXPECT().Quote(gomock.Any(), gomock.Any()).Return(dto.QuoteResponse{}, failure.BadRequestFromString("Check-in date cannot be in the past"))
			},
			wantCode: http.StatusBadRequest,
			wantBody: "in the past",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := newRouter(t)
			tt.setupMock(svc)

			recorder := serve(router, http.MethodPost, "/api/bookings/quote", tt.body)

			assert.Equal(t, tt.wantCode, recorder.Code)
			assert.Contains(t, recorder.Body.String(), tt.wantBody)
		})
	}
}

func TestHandler_CreateBooking(t *testing.T) {
	svc, router := newRouter(t)

	body := strings.TrimSuffix(validStay, "}") + `,"guest_name":"Asha"}`

	svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dto.BookingResponse{ID: "b1", Status: "PENDING"}, nil)

	recorder := serve(router, http.MethodPost, "/api/bookings/", body)
	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"PENDING"`)

	recorder = serve(router, http.MethodPost, "/api/bookings/", validStay)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "guest_name is required")
}

func TestHandler_RecordOfflinePayment(t *testing.T) {
	svc, router := newRouter(t)

	svc.EXPECT().
		RecordOfflinePayment(gomock.Any(), dto.RecordOfflinePaymentRequest{Method: "UPI", Reference: "ref-1"}, "b1").
		Return(dto.BookingResponse{}, failure.Conflict("booking already confirmed"))

	recorder := serve(router, http.MethodPost, "/admin-api/bookings/b1/payments", `{"method":"UPI","reference":"ref-1"}`)
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestHandler_GetBookingsFilters(t *testing.T) {
	svc, router := newRouter(t)

	svc.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error) {
			require.Len(t, filter.Filters, 3)
			assert.Equal(t, gDto.FilterGroupOperatorAnd, filter.Operator)

			search, ok := filter.Filters[0].(gDto.FilterGroup)
			require.True(t, ok)
			assert.Equal(t, gDto.FilterGroupOperatorOr, search.Operator)

			return dto.GetBookingsResponse{}, nil
		})

	recorder := serve(router, http.MethodGet, "/admin-api/bookings/?q=asha&status=CONFIRMED&from=2026-12-01&to=bad", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestHandler_Documents(t *testing.T) {
	svc, router := newRouter(t)

	svc.EXPECT().Invoice(gomock.Any(), "b1").Return([]byte("%PDF-1.3"), nil)
	svc.EXPECT().Export(gomock.Any(), gomock.Any()).Return([]byte("PK"), nil)

	recorder := serve(router, http.MethodGet, "/api/bookings/b1/invoice", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, constant.ContentTypePDF, recorder.Header().Get(constant.RequestHeaderContentType))
	assert.Contains(t, recorder.Header().Get(constant.RequestHeaderDisposition), "invoice-b1.pdf")

	recorder = serve(router, http.MethodGet, "/admin-api/bookings/export?status=PENDING", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, constant.ContentTypeXLSX, recorder.Header().Get(constant.RequestHeaderContentType))
}
