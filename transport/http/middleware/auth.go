package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"slices"

	"resort/config"
	"resort/infras/jwt"
	"resort/infras/otel"
	authService "resort/internal/domains/auth/service"
	"resort/permissions"
	"resort/shared/constant"
	"resort/shared/failure"
	"resort/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// trustedKey marks requests already authenticated by a valid API key.
type trustedKey struct{}

var (
	errAuthRequired   = failure.Unauthorized("Authentication required")
	errBadAuthHeader  = failure.Unauthorized("Invalid authorization header format")
	errSessionExpired = failure.Unauthorized("Session has expired")
	errSessionRevoked = failure.Unauthorized("Session has been revoked")
	errBadClaims      = failure.Unauthorized("Invalid token claims")
	errBadSession     = failure.Unauthorized("Invalid session")
)

type Auth interface {
	Auth(http.Handler) http.Handler
	APIKey(http.Handler) http.Handler
}

type Role interface {
	RBAC(http.Handler) http.Handler
}

type AuthRole interface {
	Auth
	Role
}

type authRoleImpl struct {
	jwtService  jwt.JWT
	authService authService.Auth
	otel        otel.Otel
	permission  *permissions.PermissionData
	cfg         *config.Config
}

func NewAuthRoleMiddleware(
	jwtService jwt.JWT,
	authService authService.Auth,
	otel otel.Otel,
	permissions *permissions.PermissionData,
	cfg *config.Config,
) AuthRole {
	return &authRoleImpl{
		jwtService:  jwtService,
		authService: authService,
		otel:        otel,
		permission:  permissions,
		cfg:         cfg,
	}
}

// Auth resolves the session from the cookie, falling back to a bearer header, and stores
// the caller in the request context.
func (m *authRoleImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, err := m.authenticate(request)
		if err != nil {
			response.WithError(writer, err)

			return
		}

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// RBAC must run after Auth. Routes without listed roles only need a session.
func (m *authRoleImpl) RBAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if err := m.authorize(request); err != nil {
			response.WithError(writer, err)

			return
		}

		next.ServeHTTP(writer, request)
	})
}

// APIKey lets internal callers act as the system admin. Requests without the header pass
// through untouched; a wrong key is rejected outright.
func (m *authRoleImpl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, err := m.identify(request)
		if err != nil {
			response.WithError(writer, err)

			return
		}

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

func (m *authRoleImpl) authenticate(request *http.Request) (ctx context.Context, err error) {
	ctx = request.Context()

	_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "auth.middleware")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	path := routePattern(request)
	if trusted(ctx) || m.find(path, request.Method).Skip {
		return ctx, nil
	}

	scope.SetAttributes(map[string]any{"http.path": path, "http.method": request.Method})

	tokenString, err := m.token(request)
	if err != nil {
		return ctx, err
	}

	claims, err := m.jwtService.ValidateToken(ctx, tokenString, jwt.SessionToken)

	switch {
	case errors.Is(err, jwt.ErrExpiredToken):
		return ctx, errSessionExpired
	case errors.Is(err, jwt.ErrInvalidClaim):
		return ctx, errBadClaims
	case err != nil:
		return ctx, errBadSession
	case claims.Role == constant.Empty:
		log.Warn().Str("token", claims.TokenID).Msg("session token without role")

		return ctx, errBadClaims
	case m.authService.Revoked(ctx, claims.TokenID):
		return ctx, errSessionRevoked
	}

	ctx = context.WithValue(ctx, constant.ContextKeyUserID, claims.UserID)
	ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, claims.Email)
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, claims.Role)
	ctx = context.WithValue(ctx, constant.ContextKeyTokenID, claims.TokenID)

	if claims.ExpiresAt != nil {
		ctx = context.WithValue(ctx, constant.ContextKeyTokenExp, claims.ExpiresAt.Time)
	}

	return ctx, nil
}

func (m *authRoleImpl) authorize(request *http.Request) (err error) {
	ctx := request.Context()

	_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "rbac.middleware")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if trusted(ctx) {
		return nil
	}

	if m.permission == nil {
		return failure.ForbiddenError
	}

	permission := m.find(routePattern(request), request.Method)
	if permission.Skip || len(permission.Permissions) == 0 {
		return nil
	}

	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	if !slices.Contains(permission.Permissions, role) {
		scope.SetAttributes(map[string]any{"user_role": role, "allowed_roles": permission.Permissions})

		return failure.ForbiddenError
	}

	return nil
}

func (m *authRoleImpl) identify(request *http.Request) (ctx context.Context, err error) {
	ctx = request.Context()

	_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "api_key.middleware")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	key := request.Header.Get(constant.RequestHeaderAPIKey)
	if key == constant.Empty {
		scope.SetAttribute("http.source", "client")

		return ctx, nil
	}

	scope.SetAttribute("http.source", "internal")

	expected := m.cfg.App.APIKey
	if expected == constant.Empty || subtle.ConstantTimeCompare([]byte(key), []byte(expected)) != 1 {
		log.Warn().Str("path", request.URL.Path).Msg("rejected api key")

		return ctx, failure.ForbiddenError
	}

	ctx = context.WithValue(ctx, trustedKey{}, true)
	ctx = context.WithValue(ctx, constant.ContextKeyUserID, constant.ContextSystem)
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleAdmin)

	return ctx, nil
}

func (m *authRoleImpl) token(request *http.Request) (string, error) {
	if cookie, err := request.Cookie(m.cfg.Session.CookieName); err == nil && cookie.Value != constant.Empty {
		return cookie.Value, nil
	}

	header := request.Header.Get(constant.RequestHeaderAuthorization)
	if header == constant.Empty {
		return constant.Empty, errAuthRequired
	}

	token, err := jwt.ExtractTokenFromHeader(header)
	if err != nil {
		return constant.Empty, errBadAuthHeader
	}

	return token, nil
}

func (m *authRoleImpl) find(path, method string) permissions.Permission {
	if m.permission == nil {
		return permissions.Permission{}
	}

	if m.permission.Skip {
		return permissions.Permission{Skip: true}
	}

	return m.permission.FindPermissions(path, method)
}

func trusted(ctx context.Context) bool {
	ok, _ := ctx.Value(trustedKey{}).(bool)

	return ok
}

// routePattern resolves the chi route template so permissions match "/bookings/{id}"
// rather than concrete ids.
func routePattern(request *http.Request) string {
	rctx := chi.RouteContext(request.Context())
	if rctx == nil || rctx.Routes == nil {
		return request.URL.Path
	}

	pattern := rctx.Routes.Find(chi.NewRouteContext(), request.Method, request.URL.Path)
	if pattern == constant.Empty {
		return request.URL.Path
	}

	return pattern
}
