package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"resort/config"
	"resort/infras/mailer"
	"resort/infras/otel"
	"resort/internal/domains/inquiry/model"
	"resort/internal/domains/inquiry/model/dto"
	"resort/internal/domains/inquiry/repository"
	"resort/shared"
	"resort/shared/constant"
	gDto "resort/shared/dto"
	"resort/shared/failure"

	"github.com/rs/zerolog/log"
)

var errInquiryNotFound = failure.NotFound("inquiry not found")

type Inquiry interface {
	Create(ctx context.Context, req dto.CreateInquiryRequest) (dto.InquiryResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetInquiriesResponse, error)
	Get(ctx context.Context, id string) (dto.InquiryResponse, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo   repository.Inquiry
	mailer mailer.Mailer
	cfg    *config.Config
	otel   otel.Otel
}

func New(repo repository.Inquiry, mailer mailer.Mailer, cfg *config.Config, otel otel.Otel) Inquiry {
	return &serviceImpl{
		repo:   repo,
		mailer: mailer,
		cfg:    cfg,
		otel:   otel,
	}
}

// Create stores a contact form submission and forwards it to the resort inbox.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateInquiryRequest) (res dto.InquiryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	inquiry := req.ToModel()

	if err = s.repo.Insert(ctx, inquiry); err != nil {
		log.Error().Err(err).Msg("failed to create inquiry")

		return res, fmt.Errorf("failed to create inquiry: %w", err)
	}

	if inbox := s.cfg.External.SMTP.From; inbox != constant.Empty {
		go s.forward(context.WithoutCancel(ctx), inbox, inquiry)
	}

	res.FromModel(inquiry)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetInquiriesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count inquiries")

		return res, fmt.Errorf("failed to count inquiries: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get inquiries")

		return res, fmt.Errorf("failed to get inquiries: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.InquiryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	inquiry, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get inquiry")

		return res, fmt.Errorf("failed to get inquiry: %w", err)
	}

	if inquiry.ID == constant.Empty {
		return res, errInquiryNotFound
	}

	res.FromModel(inquiry)

	return res, nil
}

func (s *serviceImpl) MarkRead(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".MarkRead")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if inquiry exists")

		return fmt.Errorf("failed to check if inquiry exists: %w", err)
	}

	if !exist {
		return errInquiryNotFound
	}

	update := shared.TransformFields(struct{}{}, user)
	update[model.FieldStatus] = model.StatusRead

	if err = s.repo.Update(ctx, update, filter); err != nil {
		log.Error().Err(err).Msg("failed to mark inquiry read")

		return fmt.Errorf("failed to mark inquiry read: %w", err)
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
		log.Error().Err(err).Msg("failed to check if inquiry exists")

		return fmt.Errorf("failed to check if inquiry exists: %w", err)
	}

	if !exist {
		return errInquiryNotFound
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete inquiry")

		return fmt.Errorf("failed to delete inquiry: %w", err)
	}

	return nil
}

func (s *serviceImpl) forward(ctx context.Context, inbox string, inquiry model.Inquiry) {
	body := fmt.Sprintf("New enquiry from %s <%s>\nPhone: %s\n\n%s\n", inquiry.Name, inquiry.Email, inquiry.Phone, inquiry.Message)

	err := s.mailer.Send(ctx, mailer.Mail{
		To:      []string{inbox},
		Subject: "Website enquiry from " + inquiry.Name,
		Body:    body,
	})
	if err != nil {
		log.Error().Err(err).Str("inquiry", inquiry.ID).Msg("failed to forward inquiry")
	}
}
