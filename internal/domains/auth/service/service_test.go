package service_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"resort/config"
	"resort/infras/jwt"
	jwtMocks "resort/infras/jwt/mocks"
	"resort/infras/mailer"
	mailerMocks "resort/infras/mailer/mocks"
	"resort/infras/otel/mocks"
	"resort/internal/domains/auth/model/dto"
	"resort/internal/domains/auth/service"
	userMocks "resort/internal/domains/user/mocks"
	userModel "resort/internal/domains/user/model"
	"resort/shared/cache"
	cacheMocks "resort/shared/cache/mocks"
	"resort/shared/constant"
	gDto "resort/shared/dto"
	"resort/shared/failure"
	"resort/shared/password"
)

type fixture struct {
	repo   *userMocks.MockUser
	jwt    *jwtMocks.MockJWT
	cache  *cacheMocks.MockRedisCache
	mailer *mailerMocks.MockMailer
	svc    service.Auth
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)

	f := fixture{
		repo:   userMocks.NewMockUser(ctrl),
		jwt:    jwtMocks.NewMockJWT(ctrl),
		cache:  cacheMocks.NewMockRedisCache(ctrl),
		mailer: mailerMocks.NewMockMailer(ctrl),
	}

	cfg := &config.Config{}
	cfg.App.Name = "Vintage Valley Resort"
	cfg.App.PublicSiteURL = "https://vintagevalley.example/"
	cfg.JWT.ResetExpireMin = 30

	f.svc = service.New(f.repo, cfg, mocks.NewOtel(), f.jwt, f.cache, f.mailer)

	return f
}

func hashed(t *testing.T, plain string) string {
	hash, err := password.Hash(plain)
	require.NoError(t, err)

	return hash
}

func sessionToken() *jwt.Token {
	return &jwt.Token{Value: "signed", TokenID: "tid", ExpiresAt: time.Now().Add(time.Hour)}
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name: "success",
			setupMock: func(f fixture) {
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, user userModel.User) error {
						assert.Equal(t, constant.RoleUser, user.Role)
						assert.Equal(t, "guest@example.com", user.Email)

						return nil
					})
			},
		},
		{
			name: "email taken",
			setupMock: func(f fixture) {
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "database error",
			setupMock: func(f fixture) {
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Register(context.Background(), dto.RegisterRequest{
				Name: "Guest", Email: "Guest@Example.com", Password: "password123",
			})
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, constant.RoleUser, res.Role)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hash := hashed(t, "password123")

	tests := []struct {
		name      string
		user      userModel.User
		password  string
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name:     "success",
			user:     userModel.User{ID: "u1", Email: "a@example.com", Password: hash, Role: constant.RoleUser, Active: true},
			password: "password123",
			setupMock: func(f fixture) {
				f.jwt.EXPECT().GenerateToken(gomock.Any(), "u1", "a@example.com", constant.RoleUser, jwt.SessionToken).Return(sessionToken(), nil)
				f.repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Contains(t, fields, userModel.FieldLastLogin)

						return nil
					})
			},
		},
		{
			name:     "last login failure does not block",
			user:     userModel.User{ID: "u1", Email: "a@example.com", Password: hash, Role: constant.RoleUser, Active: true},
			password: "password123",
			setupMock: func(f fixture) {
				f.jwt.EXPECT().GenerateToken(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(sessionToken(), nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
		},
		{
			name:      "unknown email",
			user:      userModel.User{},
			password:  "password123",
			setupMock: func(fixture) {},
			wantCode:  http.StatusUnauthorized,
		},
		{
			name:      "wrong password",
			user:      userModel.User{ID: "u1", Password: hash, Active: true},
			password:  "nope",
			setupMock: func(fixture) {},
			wantCode:  http.StatusUnauthorized,
		},
		{
			name:      "deactivated",
			user:      userModel.User{ID: "u1", Password: hash, Active: false},
			password:  "password123",
			setupMock: func(fixture) {},
			wantCode:  http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.user, nil)
			tt.setupMock(f)

			res, err := f.svc.Login(context.Background(), dto.LoginRequest{Email: "a@example.com", Password: tt.password})
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "signed", res.Token)
			assert.Equal(t, "u1", res.User.ID)
		})
	}
}

func TestAuthService_AdminLogin(t *testing.T) {
	hash := hashed(t, "password123")

	t.Run("guest account rejected", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{ID: "u1", Password: hash, Role: constant.RoleUser, Active: true}, nil)

		_, err := f.svc.AdminLogin(context.Background(), dto.LoginRequest{Email: "a@example.com", Password: "password123"})
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	for _, role := range []string{constant.RoleAdmin, constant.RoleStaff} {
		t.Run(role, func(t *testing.T) {
			f := newFixture(t)
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{ID: "s1", Password: hash, Role: role, Active: true}, nil)
			f.jwt.EXPECT().GenerateToken(gomock.Any(), "s1", gomock.Any(), role, jwt.SessionToken).Return(sessionToken(), nil)
			f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

			res, err := f.svc.AdminLogin(context.Background(), dto.LoginRequest{Email: "s@example.com", Password: "password123"})
			require.NoError(t, err)
			assert.Equal(t, role, res.User.Role)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("revokes until expiry", func(t *testing.T) {
		f := newFixture(t)

		ctx := context.WithValue(context.Background(), constant.ContextKeyTokenID, "tid")
		ctx = context.WithValue(ctx, constant.ContextKeyTokenExp, time.Now().Add(time.Hour))

		f.cache.EXPECT().
			Save(gomock.Any(), "auth:revoked:tid", "1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _ any, ttl int) error {
				assert.InDelta(t, 3600, ttl, 5)

				return nil
			})

		require.NoError(t, f.svc.Logout(ctx))
	})

	t.Run("expired token needs no revocation", func(t *testing.T) {
		f := newFixture(t)

		ctx := context.WithValue(context.Background(), constant.ContextKeyTokenID, "tid")
		ctx = context.WithValue(ctx, constant.ContextKeyTokenExp, time.Now().Add(-time.Minute))

		require.NoError(t, f.svc.Logout(ctx))
	})

	t.Run("no session", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.svc.Logout(context.Background()))
	})
}

func TestAuthService_Revoked(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "revoked", err: nil, want: true},
		{name: "not revoked", err: cache.Nil, want: false},
		{name: "redis down", err: errors.New("connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.cache.EXPECT().Get(gomock.Any(), "auth:revoked:tid", gomock.Any()).Return(tt.err)

			assert.Equal(t, tt.want, f.svc.Revoked(context.Background(), "tid"))
		})
	}
}

func TestAuthService_Me(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Me(context.Background())
	assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "u1")
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{ID: "u1", Name: "Meera"}, nil)

	res, err := f.svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Meera", res.Name)
}

func TestAuthService_ChangePassword(t *testing.T) {
	hash := hashed(t, "old-password")
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "u1")

	t.Run("wrong current password", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{ID: "u1", Password: hash}, nil)

		err := f.svc.ChangePassword(ctx, dto.ChangePasswordRequest{CurrentPassword: "bad", NewPassword: "new-password"})
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("success", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{ID: "u1", Password: hash}, nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.NoError(t, password.Verify("new-password", fields[userModel.FieldPassword].(string)))

				return nil
			})

		require.NoError(t, f.svc.ChangePassword(ctx, dto.ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "new-password"}))
	})
}

func TestAuthService_ForgotPassword(t *testing.T) {
	t.Run("unknown email still succeeds", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)

		require.NoError(t, f.svc.ForgotPassword(context.Background(), dto.ForgotPasswordRequest{Email: "nobody@example.com"}))
	})

	t.Run("database error still succeeds", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, errors.New("database error"))

		require.NoError(t, f.svc.ForgotPassword(context.Background(), dto.ForgotPasswordRequest{Email: "a@example.com"}))
	})

	t.Run("mails reset link", func(t *testing.T) {
		f := newFixture(t)
		sent := make(chan mailer.Mail, 1)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{ID: "u1", Name: "Meera", Email: "a@example.com", Active: true}, nil)
		f.jwt.EXPECT().
			GenerateToken(gomock.Any(), "u1", "a@example.com", gomock.Any(), jwt.ResetToken).
			Return(&jwt.Token{Value: "reset.token", TokenID: "rid", ExpiresAt: time.Now().Add(30 * time.Minute)}, nil)
		f.mailer.EXPECT().
			Send(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, message mailer.Mail) error {
				sent <- message

				return nil
			})

		require.NoError(t, f.svc.ForgotPassword(context.Background(), dto.ForgotPasswordRequest{Email: "a@example.com"}))

		select {
		case message := <-sent:
			assert.Equal(t, []string{"a@example.com"}, message.To)
			assert.True(t, strings.Contains(message.Body, "https://vintagevalley.example/reset-password?token=reset.token"))
			assert.Contains(t, message.Body, "30 minutes")
		case <-time.After(time.Second):
			t.Fatal("reset mail was not sent")
		}
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	req := dto.ResetPasswordRequest{Token: "reset.token", NewPassword: "brand-new-pass"}
	claims := &jwt.Claims{
		UserID:           "u1",
		TokenID:          "rid",
		RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(time.Now().Add(10 * time.Minute))},
	}

	t.Run("invalid token", func(t *testing.T) {
		f := newFixture(t)
		f.jwt.EXPECT().ValidateToken(gomock.Any(), "reset.token", jwt.ResetToken).Return(nil, jwt.ErrExpiredToken)

		err := f.svc.ResetPassword(context.Background(), req)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("already used", func(t *testing.T) {
		f := newFixture(t)
		f.jwt.EXPECT().ValidateToken(gomock.Any(), gomock.Any(), gomock.Any()).Return(claims, nil)
		f.cache.EXPECT().Get(gomock.Any(), "auth:revoked:rid", gomock.Any()).Return(nil)

		err := f.svc.ResetPassword(context.Background(), req)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("success revokes token", func(t *testing.T) {
		f := newFixture(t)
		f.jwt.EXPECT().ValidateToken(gomock.Any(), gomock.Any(), gomock.Any()).Return(claims, nil)
		f.cache.EXPECT().Get(gomock.Any(), "auth:revoked:rid", gomock.Any()).Return(cache.Nil)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{ID: "u1", Active: true}, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.cache.EXPECT().Save(gomock.Any(), "auth:revoked:rid", "1", gomock.Any()).Return(nil)

		require.NoError(t, f.svc.ResetPassword(context.Background(), req))
	})
}
