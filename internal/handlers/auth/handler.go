package auth

import (
	"context"
	"net/http"
	"time"

	"resort/config"
	"resort/infras/otel"
	"resort/internal/domains/auth/model/dto"
	"resort/internal/domains/auth/service"
	"resort/shared"
	"resort/shared/constant"
	"resort/shared/validator"
	"resort/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Auth
	cfg     *config.Config
	otel    otel.Otel
}

func New(service service.Auth, cfg *config.Config, otel otel.Otel) Handler {
	return Handler{
		service: service,
		cfg:     cfg,
		otel:    otel,
	}
}

func (handler *Handler) Router(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", handler.Register)
		r.Post("/login", handler.Login)
		r.Post("/logout", handler.Logout)
		r.Get("/me", handler.Me)
		r.Post("/change-password", handler.ChangePassword)
		r.Post("/forgot-password", handler.ForgotPassword)
		r.Post("/reset-password", handler.ResetPassword)
	})
}

func (handler *Handler) AdminRouter(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", handler.AdminLogin)
		r.Post("/logout", handler.Logout)
		r.Get("/me", handler.Me)
	})
}

// Register handles user registration
// @Summary Register a new user
// @Description Register a guest account. The caller still has to log in.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Register Request"
// @Success 201 {object} response.Data[userDto.UserResponse]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error "Email already registered"
// @Router /api/auth/register [post]
func (handler *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Register")
	defer scope.End()

	req := dto.RegisterRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	user, err := handler.service.Register(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to register user")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("User registered successfully")

	response.WithJSON(w, http.StatusCreated, user)
}

// Login handles user login
// @Summary Login a user
// @Description Sets the session cookie and returns the same token in the body for API clients.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} response.Data[dto.SessionResponse]
// @Failure 401 {object} response.Error "Invalid email or password"
// @Failure 403 {object} response.Error "Account is deactivated"
// @Router /api/auth/login [post]
func (handler *Handler) Login(w http.ResponseWriter, r *http.Request) {
	handler.login(w, r, handler.service.Login)
}

// AdminLogin
// @Summary Login to the admin panel
// @Description Only ADMIN and STAFF accounts may log in here.
// @Tags Admin Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} response.Data[dto.SessionResponse]
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error "Admin access only"
// @Router /admin-api/auth/login [post]
func (handler *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	handler.login(w, r, handler.service.AdminLogin)
}

type loginFunc func(ctx context.Context, req dto.LoginRequest) (dto.SessionResponse, error)

func (handler *Handler) login(w http.ResponseWriter, r *http.Request, login loginFunc) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Login")
	defer scope.End()

	req := dto.LoginRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	session, err := login(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Str("email", shared.NormalizeEmail(req.Email)).Msg("login rejected")

		response.WithError(w, err)

		return
	}

	http.SetCookie(w, handler.cookie(session.Token, session.ExpiresAt))

	response.WithJSON(w, http.StatusOK, session)
}

// Logout
// @Summary Logout
// @Description Revokes the current session token and clears the cookie.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Message
// @Router /api/auth/logout [post]
// @Security SessionAuth
func (handler *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Logout")
	defer scope.End()

	if err := handler.service.Logout(ctx); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to logout")

		response.WithError(w, err)

		return
	}

	cookie := handler.cookie(constant.Empty, time.Unix(0, 0))
	cookie.MaxAge = -1

	http.SetCookie(w, cookie)

	response.WithMessage(w, http.StatusOK, "Logged out")
}

// Me
// @Summary Current user
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Data[userDto.UserResponse]
// @Failure 401 {object} response.Error
// @Router /api/auth/me [get]
// @Security SessionAuth
func (handler *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Me")
	defer scope.End()

	user, err := handler.service.Me(ctx)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, user)
}

// ChangePassword
// @Summary Change password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Passwords"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error "Current password is incorrect"
// @Router /api/auth/change-password [post]
// @Security SessionAuth
func (handler *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ChangePassword")
	defer scope.End()

	req := dto.ChangePasswordRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	if err := handler.service.ChangePassword(ctx, req); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Password updated")
}

// ForgotPassword
// @Summary Request a password reset link
// @Description Always answers 200 so callers cannot probe which emails are registered.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Email"
// @Success 200 {object} response.Message
// @Router /api/auth/forgot-password [post]
func (handler *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ForgotPassword")
	defer scope.End()

	req := dto.ForgotPasswordRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	if err := handler.service.ForgotPassword(ctx, req); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "If the email is registered, a reset link has been sent")
}

// ResetPassword
// @Summary Reset password with an emailed token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Token and new password"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error "Reset link is invalid or has expired"
// @Router /api/auth/reset-password [post]
func (handler *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ResetPassword")
	defer scope.End()

	req := dto.ResetPasswordRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	if err := handler.service.ResetPassword(ctx, req); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Password has been reset")
}

func (handler *Handler) cookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     handler.cfg.Session.CookieName,
		Value:    value,
		Path:     "/",
		Domain:   handler.cfg.Session.Domain,
		Expires:  expires,
		Secure:   handler.cfg.Session.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
