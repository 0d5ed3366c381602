package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resort/config"
	"resort/infras/metrics"
	"resort/infras/otel"
	"resort/infras/postgres"
	"resort/infras/razorpay"
	bookingModel "resort/internal/domains/booking/model"
	bookingRepo "resort/internal/domains/booking/repository"
	bookingService "resort/internal/domains/booking/service"
	"resort/internal/domains/payment/model"
	"resort/internal/domains/payment/model/dto"
	"resort/internal/domains/payment/repository"
	"resort/internal/domains/pricing"
	"resort/shared"
	"resort/shared/constant"
	gDto "resort/shared/dto"
	"resort/shared/failure"
	"resort/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var (
	ErrVerificationFailed = failure.BadRequestFromString("Payment verification failed")
	ErrBookingSettled     = failure.Conflict("Booking is already paid, this payment will be refunded")
	errPaymentNotFound    = failure.NotFound("payment not found")
	errBookingNotFound    = failure.NotFound("booking not found")
	errBookingNotPending  = failure.Conflict("booking is not awaiting payment")
	errAlreadyPaid        = errors.New("payment already settled")
)

type Payment interface {
	CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (dto.OrderResponse, error)
	Verify(ctx context.Context, req dto.VerifyRequest) (dto.VerifyResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetPaymentsResponse, error)
	Get(ctx context.Context, id string) (dto.PaymentResponse, error)
}

type serviceImpl struct {
	repo           repository.Payment
	bookingRepo    bookingRepo.Booking
	bookingService bookingService.Booking
	gateway        razorpay.Gateway
	transactor     postgres.Transactor
	cfg            *config.Config
	otel           otel.Otel
	now            func() time.Time
}

func New(
	repo repository.Payment,
	bookingRepo bookingRepo.Booking,
	bookingService bookingService.Booking,
	gateway razorpay.Gateway,
	transactor postgres.Transactor,
	cfg *config.Config,
	otel otel.Otel,
) Payment {
	return &serviceImpl{
		repo:           repo,
		bookingRepo:    bookingRepo,
		bookingService: bookingService,
		gateway:        gateway,
		transactor:     transactor,
		cfg:            cfg,
		otel:           otel,
		now:            timezone.Now,
	}
}

func (s *serviceImpl) CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (res dto.OrderResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelPaymentScopeName, constant.OtelPaymentScopeName+".CreateOrder")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if user == constant.Empty {
		return res, failure.Unauthorized("Authentication required")
	}

	booking, err := s.booking(ctx, req.BookingID)
	if err != nil {
		return res, err
	}

	if booking.Owner() != user {
		return res, errBookingNotFound
	}

	if booking.Status != bookingModel.StatusPending {
		return res, errBookingNotPending
	}

	amount := pricing.AmountInSmallestUnit(booking.Amount)
	if amount < pricing.MinOrderPaise {
		return res, pricing.ErrAmountTooSmall
	}

	open, err := s.openOrder(ctx, booking)
	if err != nil {
		return res, err
	}

	if open.ID != constant.Empty {
		return s.orderResponse(booking.ID, open.GatewayOrderID, amount, open.Currency), nil
	}

	currency := s.cfg.External.Razorpay.Currency

	order, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  booking.ID,
		Notes:    map[string]string{"booking_id": booking.ID, "user_id": user},
	})
	if err != nil {
		log.Error().Err(err).Str("booking", booking.ID).Msg("failed to create gateway order")

		return res, fmt.Errorf("failed to create gateway order: %w", err)
	}

	payment := model.Payment{
		ID:             uuid.NewString(),
		BookingID:      booking.ID,
		Provider:       model.ProviderRazorpay,
		Status:         model.StatusCreated,
		Amount:         booking.Amount,
		Currency:       currency,
		GatewayOrderID: order.ID,
		Metadata:       shared.NewMetadata(user),
	}

	if err = s.repo.Insert(ctx, payment); err != nil {
		log.Error().Err(err).Str("booking", booking.ID).Msg("failed to store payment order")

		return res, fmt.Errorf("failed to store payment order: %w", err)
	}

	return s.orderResponse(booking.ID, order.ID, amount, currency), nil
}

// Verify checks the checkout signature and settles the payment and booking together.
func (s *serviceImpl) Verify(ctx context.Context, req dto.VerifyRequest) (res dto.VerifyResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelPaymentScopeName, constant.OtelPaymentScopeName+".Verify")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	defer func() {
		if err != nil {
			metrics.IncPaymentVerification(metrics.ResultFailed)
		}
	}()

	if !razorpay.VerifySignature(s.cfg.External.Razorpay.KeySecret, req.OrderID, req.PaymentID, req.Signature) {
		log.Warn().Str("order", req.OrderID).Msg("payment signature mismatch")

		return res, ErrVerificationFailed
	}

	payment, err := s.repo.Get(ctx, shared.FilterByField(model.FieldGatewayOrderID, req.OrderID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get payment")

		return res, fmt.Errorf("failed to get payment: %w", err)
	}

	if payment.ID == constant.Empty {
		return res, errPaymentNotFound
	}

	booking, err := s.booking(ctx, payment.BookingID)
	if err != nil {
		return res, err
	}

	settled := dto.VerifyResponse{
		BookingID: booking.ID,
		Status:    bookingModel.StatusConfirmed,
		PaymentID: payment.ID,
	}

	if payment.Status == model.StatusPaid {
		settled.Status = booking.Status

		return settled, nil
	}

	if booking.Status == bookingModel.StatusConfirmed {
		flagRefund(req, booking.ID)

		return res, ErrBookingSettled
	}

	err = s.transactor.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		affected, err := s.repo.UpdateTxAffected(ctx, tx, s.paidFields(req), gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorAnd,
			Filters: []any{
				gDto.Filter{Field: model.FieldID, Value: payment.ID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
				gDto.Filter{
					ArgName:  "current_status",
					Field:    model.FieldStatus,
					Value:    model.StatusCreated,
					Operator: gDto.FilterOperatorEq,
					Table:    model.TableName,
				},
			},
		})
		if err != nil {
			return fmt.Errorf("failed to mark payment paid: %w", err)
		}

		if affected == 0 {
			return errAlreadyPaid
		}

		return s.bookingService.ConfirmTx(ctx, tx, booking)
	})

	switch {
	case errors.Is(err, errAlreadyPaid):
		return settled, nil
	case errors.Is(err, bookingService.ErrAlreadyConfirmed), shared.IsUniqueViolation(err):
		flagRefund(req, booking.ID)

		return res, ErrBookingSettled
	case errors.Is(err, bookingService.ErrSoldOut):
		flagRefund(req, booking.ID)

		return res, err
	case err != nil:
		log.Error().Err(err).Str("order", req.OrderID).Msg("failed to settle payment")

		return res, err
	}

	metrics.IncPaymentVerification(metrics.ResultSuccess)

	go s.bookingService.NotifyConfirmed(context.WithoutCancel(ctx), booking.ID)

	return settled, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetPaymentsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count payments")

		return res, fmt.Errorf("failed to count payments: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get payments")

		return res, fmt.Errorf("failed to get payments: %w", err)
	}

	s.backfill(ctx, models)

	res.FromModels(models, total, req.Limit)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.PaymentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	payment, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get payment")

		return res, fmt.Errorf("failed to get payment: %w", err)
	}

	if payment.ID == constant.Empty {
		return res, errPaymentNotFound
	}

	res.FromModel(payment)

	return res, nil
}

// backfill fills in method and payer details for settled gateway payments. Errors are logged and skipped.
func (s *serviceImpl) backfill(ctx context.Context, payments []model.Payment) {
	remaining := s.cfg.Pricing.PaymentBackfillLimit

	for i := range payments {
		if remaining <= 0 {
			return
		}

		payment := &payments[i]
		if payment.Provider != model.ProviderRazorpay || payment.Status != model.StatusPaid ||
			payment.Method != constant.Empty || payment.GatewayPaymentID == constant.Empty {
			continue
		}

		remaining--

		detail, err := s.gateway.FetchPayment(ctx, payment.GatewayPaymentID)
		if err != nil {
			log.Warn().Err(err).Str("payment", payment.ID).Msg("failed to fetch gateway payment")

			continue
		}

		update := shared.TransformFields(struct{}{}, constant.ContextSystem)
		update[model.FieldMethod] = detail.Method
		update[model.FieldPayerEmail] = detail.Email
		update[model.FieldPayerContact] = detail.Contact

		if err := s.repo.Update(ctx, update, shared.FilterByID(payment.ID, model.FieldID, model.TableName)); err != nil {
			log.Warn().Err(err).Str("payment", payment.ID).Msg("failed to store gateway payment details")

			continue
		}

		payment.Method = detail.Method
		payment.PayerEmail = detail.Email
		payment.PayerContact = detail.Contact
	}
}

func (s *serviceImpl) booking(ctx context.Context, id string) (bookingModel.Booking, error) {
	booking, err := s.bookingRepo.Get(ctx, shared.FilterByID(id, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, errBookingNotFound
	}

	return booking, nil
}

// openOrder returns the booking's unpaid gateway order when it was raised for the current amount.
func (s *serviceImpl) openOrder(ctx context.Context, booking bookingModel.Booking) (model.Payment, error) {
	payment, err := s.repo.Get(ctx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldBookingID, Value: booking.ID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldProvider, Value: model.ProviderRazorpay, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldStatus, Value: model.StatusCreated, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	})
	if err != nil {
		log.Error().Err(err).Str("booking", booking.ID).Msg("failed to get open payment order")

		return payment, fmt.Errorf("failed to get open payment order: %w", err)
	}

	if payment.Amount != booking.Amount {
		return model.Payment{}, nil
	}

	return payment, nil
}

func (s *serviceImpl) orderResponse(bookingID, orderID string, amount int64, currency string) dto.OrderResponse {
	return dto.OrderResponse{
		KeyID:     s.gateway.KeyID(),
		OrderID:   orderID,
		Amount:    amount,
		Currency:  currency,
		BookingID: bookingID,
	}
}

// flagRefund records a captured gateway payment that could not settle its booking.
func flagRefund(req dto.VerifyRequest, bookingID string) {
	log.Warn().
		Str("booking", bookingID).
		Str("order", req.OrderID).
		Str("gateway_payment", req.PaymentID).
		Msg("captured payment did not settle the booking, refund required")
}

func (s *serviceImpl) paidFields(req dto.VerifyRequest) map[string]any {
	update := shared.TransformFields(struct{}{}, constant.ContextSystem)
	update[model.FieldStatus] = model.StatusPaid
	update[model.FieldGatewayPaymentID] = req.PaymentID
	update[model.FieldGatewaySignature] = req.Signature
	update[model.FieldPaidAt] = s.now()

	return update
}
