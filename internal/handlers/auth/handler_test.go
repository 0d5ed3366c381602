package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"resort/config"
	"resort/infras/otel/mocks"
	"resort/internal/domains/auth/model/dto"
	serviceMocks "resort/internal/domains/auth/service/mocks"
	userDto "resort/internal/domains/user/model/dto"
	"resort/internal/handlers/auth"
	"resort/shared/failure"
)

func newRouter(t *testing.T) (*serviceMocks.MockAuth, http.Handler) {
	cfg := &config.Config{}
	cfg.Session.CookieName = "vvr_session"
	cfg.Session.Secure = true

	svc := serviceMocks.NewMockAuth(gomock.NewController(t))
	handler := auth.New(svc, cfg, mocks.NewOtel())

	router := chi.NewRouter()
	router.Route("/api", handler.Router)
	router.Route("/admin-api", handler.AdminRouter)

	return svc, router
}

func TestHandler_Login(t *testing.T) {
	svc, router := newRouter(t)

	expires := time.Now().Add(time.Hour)

	svc.EXPECT().
		Login(gomock.Any(), dto.LoginRequest{Email: "guest@example.com", Password: "secret123"}).
		Return(dto.SessionResponse{Token: "signed", ExpiresAt: expires, User: userDto.UserResponse{ID: "u1"}}, nil)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"guest@example.com","password":"secret123"}`)))

	assert.Equal(t, http.StatusOK, recorder.Code)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "vvr_session", cookies[0].Name)
	assert.Equal(t, "signed", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
}

func TestHandler_LoginRejected(t *testing.T) {
	svc, router := newRouter(t)

	svc.EXPECT().Login(gomock.Any(), gomock.Any()).Return(dto.SessionResponse{}, failure.Unauthorized("Invalid email or password"))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"guest@example.com","password":"wrong"}`)))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Empty(t, recorder.Result().Cookies())
}

func TestHandler_AdminLogin(t *testing.T) {
	svc, router := newRouter(t)

	svc.EXPECT().AdminLogin(gomock.Any(), gomock.Any()).Return(dto.SessionResponse{}, failure.Forbidden("Admin access only"))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/admin-api/auth/login",
		strings.NewReader(`{"email":"guest@example.com","password":"secret123"}`)))

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Admin access only")
}

func TestHandler_Logout(t *testing.T) {
	svc, router := newRouter(t)

	svc.EXPECT().Logout(gomock.Any()).Return(nil)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestHandler_Register(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setupMock func(svc *serviceMocks.MockAuth)
		wantCode  int
	}{
		{
			name: "created",
			body: `{"name":"Asha","email":"asha@example.com","password":"secret123"}`,
			setupMock: func(svc *serviceMocks.MockAuth) {
				svc.EXPECT().Register(gomock.Any(), gomock.Any()).Return(userDto.UserResponse{ID: "u1"}, nil)
			},
			wantCode: http.StatusCreated,
		},
		{
			name:      "short password",
			body:      `{"name":"Asha","email":"asha@example.com","password":"short"}`,
			setupMock: func(*serviceMocks.MockAuth) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "email taken",
			body: `{"name":"Asha","email":"asha@example.com","password":"secret123"}`,
			setupMock: func(svc *serviceMocks.MockAuth) {
				svc.EXPECT().Register(gomock.Any(), gomock.Any()).Return(userDto.UserResponse{}, failure.Conflict("Email already registered"))
			},
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := newRouter(t)
			tt.setupMock(svc)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantCode, recorder.Code)
		})
	}
}

func TestHandler_ForgotPassword(t *testing.T) {
	svc, router := newRouter(t)

	svc.EXPECT().ForgotPassword(gomock.Any(), dto.ForgotPasswordRequest{Email: "nobody@example.com"}).Return(nil)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password",
		strings.NewReader(`{"email":"nobody@example.com"}`)))

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestHandler_ResetPassword(t *testing.T) {
	svc, router := newRouter(t)

	svc.EXPECT().ResetPassword(gomock.Any(), gomock.Any()).Return(failure.BadRequestFromString("Reset link is invalid or has expired"))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/auth/reset-password",
		strings.NewReader(`{"token":"stale","new_password":"secret123"}`)))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
