package inquiry_test

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
	"resort/internal/domains/inquiry/model"
	"resort/internal/domains/inquiry/model/dto"
	serviceMocks "resort/internal/domains/inquiry/service/mocks"
	"resort/internal/handlers/inquiry"
	gDto "resort/shared/dto"
	"resort/shared/failure"
)

func newRouter(t *testing.T) (*serviceMocks.MockInquiry, http.Handler) {
	svc := serviceMocks.NewMockInquiry(gomock.NewController(t))
	handler := inquiry.New(svc, mocks.NewOtel())

	router := chi.NewRouter()
	router.Route("/api", handler.Router)
	router.Route("/admin-api", handler.AdminRouter)

	return svc, router
}

func TestHandler_CreateInquiry(t *testing.T) {
	svc, router := newRouter(t)

	svc.EXPECT().
		Create(gomock.Any(), dto.CreateInquiryRequest{Name: "Meera", Email: "meera@example.com", Message: "Is the pool open in winter?"}).
		Return(dto.InquiryResponse{ID: "i1", Status: model.StatusUnread}, nil)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/inquiries",
		strings.NewReader(`{"name":"Meera","email":"meera@example.com","message":"Is the pool open in winter?"}`)))

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"UNREAD"`)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/inquiries", strings.NewReader(`{"name":"Meera"}`)))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandler_GetInquiries(t *testing.T) {
	svc, router := newRouter(t)

	svc.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup) (dto.GetInquiriesResponse, error) {
			assert.Len(t, filter.Filters, 1)

			return dto.GetInquiriesResponse{}, nil
		})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/admin-api/inquiries/?status=UNREAD", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestHandler_MarkInquiryRead(t *testing.T) {
	svc, router := newRouter(t)

	svc.EXPECT().MarkRead(gomock.Any(), "missing").Return(failure.NotFound("inquiry not found"))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPatch, "/admin-api/inquiries/missing/read", nil))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
