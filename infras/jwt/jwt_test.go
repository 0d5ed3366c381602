package jwt_test

import (
	"context"
	"testing"

	"resort/config"
	"resort/infras/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "resort-test"
	cfg.JWT.SessionSecret = "session-secret"
	cfg.JWT.ResetSecret = "reset-secret"
	cfg.JWT.SessionExpireMin = 60
	cfg.JWT.ResetExpireMin = 30

	return cfg
}

func TestService_GenerateAndValidate(t *testing.T) {
	svc := jwt.New(newConfig())
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, "user-1", "guest@example.com", "USER", jwt.SessionToken)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Value)
	assert.NotEmpty(t, token.TokenID)

	claims, err := svc.ValidateToken(ctx, token.Value, jwt.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "USER", claims.Role)
	assert.Equal(t, token.TokenID, claims.TokenID)
}

func TestService_ValidateToken_WrongType(t *testing.T) {
	svc := jwt.New(newConfig())
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, "user-1", "guest@example.com", "", jwt.ResetToken)
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, token.Value, jwt.SessionToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestService_ValidateToken_Expired(t *testing.T) {
	cfg := newConfig()
	cfg.JWT.SessionExpireMin = -1
	svc := jwt.New(cfg)
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, "user-1", "guest@example.com", "USER", jwt.SessionToken)
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, token.Value, jwt.SessionToken)
	assert.ErrorIs(t, err, jwt.ErrExpiredToken)
}

func TestService_ValidateToken_Tampered(t *testing.T) {
	svc := jwt.New(newConfig())
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, "user-1", "guest@example.com", "USER", jwt.SessionToken)
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, token.Value+"x", jwt.SessionToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestService_ValidateToken_ForeignIssuer(t *testing.T) {
	cfg := newConfig()
	cfg.App.Name = "someone-else"

	token, err := jwt.New(cfg).GenerateToken(context.Background(), "user-1", "guest@example.com", "USER", jwt.SessionToken)
	require.NoError(t, err)

	_, err = jwt.New(newConfig()).ValidateToken(context.Background(), token.Value, jwt.SessionToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestService_UnknownTokenType(t *testing.T) {
	_, err := jwt.New(newConfig()).GenerateToken(context.Background(), "user-1", "guest@example.com", "USER", jwt.TokenType("refresh"))

	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer", header: "Bearer abc.def", want: "abc.def"},
		{name: "lowercase scheme", header: "bearer  abc.def ", want: "abc.def"},
		{name: "empty", header: "", wantErr: true},
		{name: "scheme only", header: "Bearer ", wantErr: true},
		{name: "basic", header: "Basic abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := jwt.ExtractTokenFromHeader(tt.header)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
