package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"math"
	"time"

	"resort/infras/metrics"
	"resort/infras/otel"
	"resort/internal/domains/pricing"
	"resort/internal/domains/promocode/model"
	"resort/internal/domains/promocode/model/dto"
	"resort/internal/domains/promocode/repository"
	"resort/shared"
	"resort/shared/constant"
	gDto "resort/shared/dto"
	"resort/shared/failure"
	"resort/shared/timezone"

	"github.com/rs/zerolog/log"
)

const maxPercent = 100

var (
	ErrCodeRequired       = failure.BadRequestFromString("Promo code is required")
	ErrInvalidBaseAmount  = failure.BadRequestFromString("Invalid base amount")
	ErrInvalidPromoCode   = failure.BadRequestFromString("Invalid Promocode")
	ErrUnsupportedType    = failure.BadRequestFromString("Unsupported promo code type")
	ErrPercentOutOfRange  = failure.BadRequestFromString("Percent value must not exceed 100")
	ErrInvalidWindow      = failure.BadRequestFromString("expires_at must be after starts_at")
	errPromoCodeNotFound  = failure.NotFound("promo code not found")
	errPromoCodeDuplicate = failure.Conflict("promo code already exists")
)

type PromoCode interface {
	Create(ctx context.Context, req dto.CreatePromoCodeRequest) error
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetPromoCodesResponse, error)
	Get(ctx context.Context, id string) (dto.PromoCodeResponse, error)
	Update(ctx context.Context, req dto.UpdatePromoCodeRequest, id string) error
	Delete(ctx context.Context, id string) error
	ValidateForBaseAmount(ctx context.Context, code string, baseAmount float64) (dto.Discount, error)
}

type serviceImpl struct {
	repo repository.PromoCode
	otel otel.Otel
	now  func() time.Time
}

func New(repo repository.PromoCode, otel otel.Otel) PromoCode {
	return &serviceImpl{
		repo: repo,
		otel: otel,
		now:  timezone.Now,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreatePromoCodeRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	promo := req.ToModel(user)

	if err = validateDefinition(promo.Type, promo.Value, promo.StartsAt, promo.ExpiresAt); err != nil {
		return err
	}

	exist, err := s.repo.Exist(ctx, shared.FilterByField(model.FieldCode, promo.Code, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check promo code existence")

		return fmt.Errorf("failed to check promo code existence: %w", err)
	}

	if exist {
		return errPromoCodeDuplicate
	}

	if err = s.repo.Insert(ctx, promo); err != nil {
		if shared.IsUniqueViolation(err) {
			return errPromoCodeDuplicate
		}

		log.Error().Err(err).Msg("failed to create promo code")

		return fmt.Errorf("failed to create promo code: %w", err)
	}

	return nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetPromoCodesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count promo codes")

		return res, fmt.Errorf("failed to count promo codes: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get promo codes")

		return res, fmt.Errorf("failed to get promo codes: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.PromoCodeResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	promo, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get promo code")

		return res, fmt.Errorf("failed to get promo code: %w", err)
	}

	if promo.ID == constant.Empty {
		return res, errPromoCodeNotFound
	}

	res.FromModel(promo)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdatePromoCodeRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req == (dto.UpdatePromoCodeRequest{}) {
		return failure.BadRequestFromString("update request cannot be empty")
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get promo code")

		return fmt.Errorf("failed to get promo code: %w", err)
	}

	if current.ID == constant.Empty {
		return errPromoCodeNotFound
	}

	req.Code = dto.NormalizeCode(req.Code)
	merged := merge(current, req)

	if err = validateDefinition(merged.Type, merged.Value, merged.StartsAt, merged.ExpiresAt); err != nil {
		return err
	}

	if req.Code != constant.Empty && req.Code != current.Code {
		exist, err := s.repo.Exist(ctx, shared.FilterByField(model.FieldCode, req.Code, model.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to check promo code existence")

			return fmt.Errorf("failed to check promo code existence: %w", err)
		}

		if exist {
			return errPromoCodeDuplicate
		}
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, user), filter); err != nil {
		if shared.IsUniqueViolation(err) {
			return errPromoCodeDuplicate
		}

		log.Error().Err(err).Msg("failed to update promo code")

		return fmt.Errorf("failed to update promo code: %w", err)
	}

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check promo code existence")

		return fmt.Errorf("failed to check promo code existence: %w", err)
	}

	if !exist {
		return errPromoCodeNotFound
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete promo code")

		return fmt.Errorf("failed to delete promo code: %w", err)
	}

	return nil
}

// ValidateForBaseAmount checks a code and returns the discount clamped to [0, baseAmount].
func (s *serviceImpl) ValidateForBaseAmount(ctx context.Context, code string, baseAmount float64) (res dto.Discount, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ValidateForBaseAmount")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	defer func() {
		metrics.IncPromoValidation(err == nil)
	}()

	code = dto.NormalizeCode(code)
	if code == constant.Empty {
		return res, ErrCodeRequired
	}

	if math.IsNaN(baseAmount) || math.IsInf(baseAmount, 0) || baseAmount < 0 {
		return res, ErrInvalidBaseAmount
	}

	promo, err := s.repo.Get(ctx, shared.FilterByField(model.FieldCode, code, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get promo code")

		return res, fmt.Errorf("failed to get promo code: %w", err)
	}

	if !promo.Redeemable(s.now()) {
		return res, ErrInvalidPromoCode
	}

	if math.IsNaN(promo.Value) || math.IsInf(promo.Value, 0) || promo.Value <= 0 {
		return res, ErrInvalidPromoCode
	}

	var discount float64

	switch promo.Type {
	case model.TypePercent:
		discount = pricing.Round2(baseAmount * promo.Value / 100)
	case model.TypeFlat:
		discount = pricing.Round2(promo.Value)
	default:
		return res, ErrUnsupportedType
	}

	base := pricing.Round2(baseAmount)
	discount = math.Min(math.Max(discount, 0), base)

	return dto.Discount{
		PromoCodeID: promo.ID,
		Code:        promo.Code,
		Type:        promo.Type,
		Value:       promo.Value,
		Discount:    discount,
		PayableBase: pricing.Round2(base - discount),
	}, nil
}

func validateDefinition(promoType string, value float64, startsAt, expiresAt *time.Time) error {
	if promoType == model.TypePercent && value > maxPercent {
		return ErrPercentOutOfRange
	}

	if startsAt != nil && expiresAt != nil && !expiresAt.After(*startsAt) {
		return ErrInvalidWindow
	}

	return nil
}

func merge(current model.PromoCode, req dto.UpdatePromoCodeRequest) model.PromoCode {
	if req.Type != constant.Empty {
		current.Type = req.Type
	}

	if req.Value != nil {
		current.Value = *req.Value
	}

	if req.StartsAt != nil {
		current.StartsAt = req.StartsAt
	}

	if req.ExpiresAt != nil {
		current.ExpiresAt = req.ExpiresAt
	}

	return current
}
