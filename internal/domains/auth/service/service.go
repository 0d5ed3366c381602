package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"resort/config"
	"resort/infras/jwt"
	"resort/infras/mailer"
	"resort/infras/otel"
	"resort/internal/domains/auth/model/dto"
	userModel "resort/internal/domains/user/model"
	userDto "resort/internal/domains/user/model/dto"
	userRepo "resort/internal/domains/user/repository"
	"resort/shared"
	"resort/shared/cache"
	"resort/shared/constant"
	"resort/shared/failure"
	"resort/shared/password"
	"resort/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheRevokedToken = "auth:revoked"
	resetPath         = "/reset-password"
)

var (
	errInvalidCredentials = failure.Unauthorized("Invalid email or password")
	errAccountDisabled    = failure.Forbidden("Account is deactivated")
	errStaffOnly          = failure.Forbidden("Admin access only")
	errEmailTaken         = failure.Conflict("Email already registered")
	errWrongPassword      = failure.BadRequestFromString("Current password is incorrect")
	errInvalidResetToken  = failure.BadRequestFromString("Reset link is invalid or has expired")
	errNotAuthenticated   = failure.Unauthorized("Authentication required")
	errUserNotFound       = failure.NotFound("user not found")
)

type Auth interface {
	Register(ctx context.Context, req dto.RegisterRequest) (userDto.UserResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.SessionResponse, error)
	AdminLogin(ctx context.Context, req dto.LoginRequest) (dto.SessionResponse, error)
	Logout(ctx context.Context) error
	Revoked(ctx context.Context, tokenID string) bool
	Me(ctx context.Context) (userDto.UserResponse, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error
}

type serviceImpl struct {
	userRepo   userRepo.User
	cfg        *config.Config
	otel       otel.Otel
	jwtService jwt.JWT
	cache      cache.RedisCache
	mailer     mailer.Mailer
}

func New(
	userRepo userRepo.User,
	cfg *config.Config,
	otel otel.Otel,
	jwt jwt.JWT,
	cache cache.RedisCache,
	mailer mailer.Mailer,
) Auth {
	return &serviceImpl{
		userRepo:   userRepo,
		cfg:        cfg,
		otel:       otel,
		jwtService: jwt,
		cache:      cache,
		mailer:     mailer,
	}
}

func (s *serviceImpl) Register(ctx context.Context, req dto.RegisterRequest) (res userDto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Register")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	email := shared.NormalizeEmail(req.Email)

	exists, err := s.userRepo.Exist(ctx, shared.FilterByField(userModel.FieldEmail, email, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if user exists")

		return res, fmt.Errorf("failed to check if user exists: %w", err)
	}

	if exists {
		return res, errEmailTaken
	}

	hashedPassword, err := password.Hash(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")

		return res, fmt.Errorf("failed to hash password: %w", err)
	}

	user := req.ToUserModel(hashedPassword)

	if err = s.userRepo.Insert(ctx, user); err != nil {
		if shared.IsUniqueViolation(err) {
			return res, errEmailTaken
		}

		log.Error().Err(err).Msg("failed to create user")

		return res, fmt.Errorf("failed to create user: %w", err)
	}

	res.FromModel(user)

	return res, nil
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.SessionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Login")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, err := s.authenticate(ctx, req)
	if err != nil {
		return res, err
	}

	return s.session(ctx, user)
}

// AdminLogin is Login restricted to ADMIN and STAFF accounts.
func (s *serviceImpl) AdminLogin(ctx context.Context, req dto.LoginRequest) (res dto.SessionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AdminLogin")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, err := s.authenticate(ctx, req)
	if err != nil {
		return res, err
	}

	if user.Role != constant.RoleAdmin && user.Role != constant.RoleStaff {
		log.Warn().Str("user_id", user.ID).Msg("admin login attempt by non staff account")

		return res, errStaffOnly
	}

	return s.session(ctx, user)
}

// Logout revokes the current session token until it would have expired anyway.
func (s *serviceImpl) Logout(ctx context.Context) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Logout")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	tokenID, _ := ctx.Value(constant.ContextKeyTokenID).(string)
	if tokenID == constant.Empty {
		return nil
	}

	expiresAt, _ := ctx.Value(constant.ContextKeyTokenExp).(time.Time)

	return s.revoke(ctx, tokenID, expiresAt)
}

// Revoked fails open when redis cannot be read.
func (s *serviceImpl) Revoked(ctx context.Context, tokenID string) bool {
	var marker string

	err := s.cache.Get(ctx, shared.BuildCacheKey(cacheRevokedToken, tokenID), &marker)
	if err == nil {
		return true
	}

	if !errors.Is(err, cache.Nil) {
		log.Warn().Err(err).Msg("failed to read token revocation")
	}

	return false
}

func (s *serviceImpl) Me(ctx context.Context) (res userDto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Me")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, err := s.currentUser(ctx)
	if err != nil {
		return res, err
	}

	res.FromModel(user)

	return res, nil
}

func (s *serviceImpl) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChangePassword")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, err := s.currentUser(ctx)
	if err != nil {
		return err
	}

	if err = password.Verify(req.CurrentPassword, user.Password); err != nil {
		return errWrongPassword
	}

	return s.setPassword(ctx, user.ID, req.NewPassword, user.ID)
}

// ForgotPassword never reveals whether the email is registered.
func (s *serviceImpl) ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ForgotPassword")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	email := shared.NormalizeEmail(req.Email)

	user, err := s.userRepo.Get(ctx, shared.FilterByField(userModel.FieldEmail, email, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user for password reset")

		return nil
	}

	if user.ID == constant.Empty || !user.Active {
		log.Info().Str("email", email).Msg("password reset requested for unknown account")

		return nil
	}

	token, err := s.jwtService.GenerateToken(ctx, user.ID, user.Email, user.Role, jwt.ResetToken)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate reset token")

		return nil
	}

	go s.sendResetMail(context.WithoutCancel(ctx), user, token)

	return nil
}

func (s *serviceImpl) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ResetPassword")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	claims, err := s.jwtService.ValidateToken(ctx, req.Token, jwt.ResetToken)
	if err != nil {
		log.Warn().Err(err).Msg("invalid reset token")

		return errInvalidResetToken
	}

	if s.Revoked(ctx, claims.TokenID) {
		return errInvalidResetToken
	}

	user, err := s.userRepo.Get(ctx, shared.FilterByID(claims.UserID, userModel.FieldID, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty || !user.Active {
		return errInvalidResetToken
	}

	if err = s.setPassword(ctx, user.ID, req.NewPassword, user.ID); err != nil {
		return err
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := s.revoke(ctx, claims.TokenID, expiresAt); err != nil {
		log.Warn().Err(err).Msg("failed to revoke used reset token")
	}

	return nil
}

func (s *serviceImpl) authenticate(ctx context.Context, req dto.LoginRequest) (userModel.User, error) {
	email := shared.NormalizeEmail(req.Email)

	user, err := s.userRepo.Get(ctx, shared.FilterByField(userModel.FieldEmail, email, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return user, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		log.Warn().Str("email", email).Msg("login attempt with non-existent email")

		return user, errInvalidCredentials
	}

	if err = password.Verify(req.Password, user.Password); err != nil {
		log.Warn().Str("email", email).Msg("login attempt with wrong password")

		return user, errInvalidCredentials
	}

	if !user.Active {
		return user, errAccountDisabled
	}

	return user, nil
}

func (s *serviceImpl) session(ctx context.Context, user userModel.User) (res dto.SessionResponse, err error) {
	token, err := s.jwtService.GenerateToken(ctx, user.ID, user.Email, user.Role, jwt.SessionToken)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate token")

		return res, fmt.Errorf("failed to generate token: %w", err)
	}

	now := timezone.Now()
	updatedFields := shared.TransformFields(dto.UpdateLastLoginRequest{LastLogin: now}, user.ID)

	if err := s.userRepo.Update(ctx, updatedFields, shared.FilterByID(user.ID, userModel.FieldID, userModel.TableName)); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to update last login")
	} else {
		user.LastLogin = &now
	}

	res.FromToken(token, user)

	return res, nil
}

func (s *serviceImpl) currentUser(ctx context.Context) (user userModel.User, err error) {
	id, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if id == constant.Empty {
		return user, errNotAuthenticated
	}

	user, err = s.userRepo.Get(ctx, shared.FilterByID(id, userModel.FieldID, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return user, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return user, errUserNotFound
	}

	return user, nil
}

func (s *serviceImpl) setPassword(ctx context.Context, id, newPassword, modifiedBy string) error {
	hashedPassword, err := password.Hash(newPassword)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash new password")

		return fmt.Errorf("failed to hash new password: %w", err)
	}

	updatedFields := shared.TransformFields(dto.UpdatePasswordRequest{Password: hashedPassword}, modifiedBy)

	if err = s.userRepo.Update(ctx, updatedFields, shared.FilterByID(id, userModel.FieldID, userModel.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update password")

		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

func (s *serviceImpl) revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := int(time.Until(expiresAt).Seconds())
	if ttl <= 0 {
		return nil
	}

	if err := s.cache.Save(ctx, shared.BuildCacheKey(cacheRevokedToken, tokenID), "1", ttl); err != nil {
		log.Error().Err(err).Msg("failed to revoke token")

		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

func (s *serviceImpl) sendResetMail(ctx context.Context, user userModel.User, token *jwt.Token) {
	link := strings.TrimRight(s.cfg.App.PublicSiteURL, "/") + resetPath + "?token=" + url.QueryEscape(token.Value)

	body := fmt.Sprintf(
		"Hello %s,\n\nUse the link below to reset your %s password. It expires in %d minutes.\n\n%s\n\n"+
			"If you did not request a reset you can ignore this email.\n",
		user.Name, s.cfg.App.Name, s.cfg.JWT.ResetExpireMin, link,
	)

	err := s.mailer.Send(ctx, mailer.Mail{
		To:      []string{user.Email},
		Subject: "Reset your password",
		Body:    body,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("failed to send reset email")
	}
}
