package room_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"resort/infras/otel/mocks"
	"resort/internal/domains/room/model/dto"
	serviceMocks "resort/internal/domains/room/service/mocks"
	"resort/internal/handlers/room"
	gDto "resort/shared/dto"
	"resort/shared/failure"
)

func newRouter(t *testing.T) (*serviceMocks.MockRoom, http.Handler) {
	svc := serviceMocks.NewMockRoom(gomock.NewController(t))
	handler := room.New(svc, mocks.NewOtel())

	router := chi.NewRouter()
	router.Route("/api", handler.Router)
	router.Route("/admin-api", handler.AdminRouter)

	return svc, router
}

func TestHandler_GetActiveRooms(t *testing.T) {
	svc, router := newRouter(t)

	svc.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRoomsResponse, error) {
			assert.Equal(t, 1, params.Page)
			assert.Len(t, filter.Filters, 2)

			return dto.GetRoomsResponse{Rooms: []dto.RoomResponse{{ID: "r1", Title: "Lotus Suite"}}, TotalPage: 1, TotalData: 1}, nil
		})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/rooms?q=lotus", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"ok":true`)
	assert.Contains(t, recorder.Body.String(), "Lotus Suite")
}

func TestHandler_GetAvailability(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		setupMock func(svc *serviceMocks.MockRoom)
		wantCode  int
	}{
		{
			name:  "success",
			query: "?check_in=2026-12-20&check_out=2026-12-22",
			setupMock: func(svc *serviceMocks.MockRoom) {
				svc.EXPECT().
					Availability(gomock.Any(), "r1", gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, checkIn, checkOut time.Time) (dto.AvailabilityResponse, error) {
						assert.Equal(t, 48*time.Hour, checkOut.Sub(checkIn))

						return dto.AvailabilityResponse{RoomID: "r1", Available: 2}, nil
					})
			},
			wantCode: http.StatusOK,
		},
		{
			name:      "missing dates",
			query:     "",
			setupMock: func(*serviceMocks.MockRoom) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:  "unknown room",
			query: "?check_in=2026-12-20&check_out=2026-12-22",
			setupMock: func(svc *serviceMocks.MockRoom) {
				svc.EXPECT().Availability(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(dto.AvailabilityResponse{}, failure.NotFound("room not found"))
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := newRouter(t)
			tt.setupMock(svc)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/rooms/r1/availability"+tt.query, nil))

			assert.Equal(t, tt.wantCode, recorder.Code)
		})
	}
}

func TestHandler_CreateRoom(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setupMock func(svc *serviceMocks.MockRoom)
		wantCode  int
	}{
		{
			name: "success",
			body: `{"title":"Lotus Suite","price_per_night":4500,"person":2}`,
			setupMock: func(svc *serviceMocks.MockRoom) {
				svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dto.RoomResponse{ID: "r1"}, nil)
			},
			wantCode: http.StatusCreated,
		},
		{
			name:      "missing price",
			body:      `{"title":"Lotus Suite","person":2}`,
			setupMock: func(*serviceMocks.MockRoom) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "malformed json",
			body:      `{"title":`,
			setupMock: func(*serviceMocks.MockRoom) {},
			wantCode:  http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := newRouter(t)
			tt.setupMock(svc)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/admin-api/rooms/", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantCode, recorder.Code)
		})
	}
}

func TestHandler_DeleteRoom(t *testing.T) {
	svc, router := newRouter(t)

	svc.EXPECT().Delete(gomock.Any(), "r1").Return(failure.Conflict("room has bookings"))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/admin-api/rooms/r1", nil))

	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "room has bookings")
}
