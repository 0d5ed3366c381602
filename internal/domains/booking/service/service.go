package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"resort/config"
	"resort/infras/kafka"
	"resort/infras/mailer"
	"resort/infras/metrics"
	"resort/infras/otel"
	"resort/infras/postgres"
	"resort/internal/domains/booking/document"
	"resort/internal/domains/booking/model"
	"resort/internal/domains/booking/model/dto"
	"resort/internal/domains/booking/repository"
	paymentModel "resort/internal/domains/payment/model"
	paymentRepo "resort/internal/domains/payment/repository"
	"resort/internal/domains/pricing"
	promoDto "resort/internal/domains/promocode/model/dto"
	promoRepo "resort/internal/domains/promocode/repository"
	promoService "resort/internal/domains/promocode/service"
	roomModel "resort/internal/domains/room/model"
	roomRepo "resort/internal/domains/room/repository"
	"resort/shared"
	"resort/shared/constant"
	gDto "resort/shared/dto"
	"resort/shared/failure"
	"resort/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	exportLimit          = 5000
	defaultOfflineMethod = "CASH"
	invoiceName          = "invoice-%s.pdf"
)

var (
	ErrSoldOut          = failure.Conflict("Room is not available for the selected dates")
	ErrAlreadyConfirmed = failure.Conflict("booking already confirmed")

	errBookingNotFound  = failure.NotFound("booking not found")
	errRoomNotFound     = failure.NotFound("room not found")
	errRoomInactive     = failure.BadRequestFromString("Room is not available for booking")
	errCapacityExceeded = failure.BadRequestFromString("Too many adults for the selected rooms")
	errBookingHasPaid   = failure.Conflict("booking has payments and cannot be deleted")
)

type Booking interface {
	Quote(ctx context.Context, req dto.QuoteRequest) (dto.QuoteResponse, error)
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	CreateManual(ctx context.Context, req dto.CreateManualBookingRequest) (dto.BookingResponse, error)
	RecordOfflinePayment(ctx context.Context, req dto.RecordOfflinePaymentRequest, id string) (dto.BookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	GetMine(ctx context.Context, req gDto.QueryParams) (dto.GetBookingsResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	Update(ctx context.Context, req dto.UpdateBookingRequest, id string) error
	Delete(ctx context.Context, id string) error
	Invoice(ctx context.Context, id string) ([]byte, error)
	Export(ctx context.Context, filter gDto.FilterGroup) ([]byte, error)
	ConfirmTx(ctx context.Context, sqltx *sqlx.Tx, booking model.Booking) error
	NotifyConfirmed(ctx context.Context, id string)
}

type serviceImpl struct {
	repo         repository.Booking
	roomRepo     roomRepo.Room
	paymentRepo  paymentRepo.Payment
	promoRepo    promoRepo.PromoCode
	promoService promoService.PromoCode
	transactor   postgres.Transactor
	mailer       mailer.Mailer
	kafka        kafka.Client
	cfg          *config.Config
	otel         otel.Otel
	rates        pricing.Rates
	now          func() time.Time
}

func New(
	repo repository.Booking,
	roomRepo roomRepo.Room,
	paymentRepo paymentRepo.Payment,
	promoRepo promoRepo.PromoCode,
	promoService promoService.PromoCode,
	transactor postgres.Transactor,
	mailer mailer.Mailer,
	kafka kafka.Client,
	cfg *config.Config,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:         repo,
		roomRepo:     roomRepo,
		paymentRepo:  paymentRepo,
		promoRepo:    promoRepo,
		promoService: promoService,
		transactor:   transactor,
		mailer:       mailer,
		kafka:        kafka,
		cfg:          cfg,
		otel:         otel,
		rates:        pricing.RatesFromConfig(cfg),
		now:          timezone.Now,
	}
}

// quoteOptions carries the manual flow overrides. Manual bookings may start in the past
// and may target inactive rooms.
type quoteOptions struct {
	pricePerNight *int
	gstPercent    *float64
	manual        bool
}

type quote struct {
	room      roomModel.Room
	checkIn   time.Time
	checkOut  time.Time
	breakdown pricing.Breakdown
	promo     promoDto.Discount
}

func (s *serviceImpl) Quote(ctx context.Context, req dto.QuoteRequest) (res dto.QuoteResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Quote")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	q, err := s.quote(ctx, req, quoteOptions{})
	if err != nil {
		return res, err
	}

	res.FromBreakdown(q.breakdown)
	res.RoomID = q.room.ID
	res.RoomTitle = q.room.Title
	res.CheckIn = timezone.Format(q.checkIn, constant.DayFormat)
	res.CheckOut = timezone.Format(q.checkOut, constant.DayFormat)
	res.PricePerNight = q.room.PricePerNight
	res.PromoCode = q.promo.Code

	return res, nil
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if user == constant.Empty {
		return res, failure.Unauthorized("Authentication required")
	}

	q, err := s.quote(ctx, req.QuoteRequest, quoteOptions{})
	if err != nil {
		return res, err
	}

	if err = s.checkAvailability(ctx, q); err != nil {
		return res, err
	}

	booking := newBooking(q, req.QuoteRequest, user)
	booking.UserID = &user
	booking.GuestName = req.GuestName
	booking.GuestEmail = req.GuestEmail
	booking.GuestPhone = req.GuestPhone
	booking.Notes = req.Notes
	booking.Source = model.SourceOnline

	if booking.GuestEmail == constant.Empty {
		booking.GuestEmail, _ = ctx.Value(constant.ContextKeyUserEmail).(string)
	}

	if err = s.repo.Insert(ctx, booking); err != nil {
		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	metrics.IncBookingCreated(model.SourceOnline)

	res.FromModel(booking)
	s.publish(ctx, kafka.EventBookingCreated, res)

	return res, nil
}

func (s *serviceImpl) CreateManual(ctx context.Context, req dto.CreateManualBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CreateManual")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	q, err := s.quote(ctx, req.QuoteRequest, quoteOptions{
		pricePerNight: req.PricePerNight,
		gstPercent:    req.GSTPercent,
		manual:        true,
	})
	if err != nil {
		return res, err
	}

	if err = s.checkAvailability(ctx, q); err != nil {
		return res, err
	}

	booking := newBooking(q, req.QuoteRequest, user)
	booking.GuestName = req.GuestName
	booking.GuestEmail = req.GuestEmail
	booking.GuestPhone = req.GuestPhone
	booking.Notes = req.Notes
	booking.Source = model.SourceManual

	if !req.MarkPaid {
		if err = s.repo.Insert(ctx, booking); err != nil {
			log.Error().Err(err).Msg("failed to create manual booking")

			return res, fmt.Errorf("failed to create manual booking: %w", err)
		}
	} else {
		now := s.now()
		booking.Status = model.StatusConfirmed
		booking.ConfirmedAt = &now

		payment := s.offlinePayment(booking, req.PaymentMethod, req.Reference, user)

		err = s.transactor.WithTransaction(ctx, func(tx *sqlx.Tx) error {
			if err := s.repo.InsertTx(ctx, tx, booking); err != nil {
				return fmt.Errorf("failed to create manual booking: %w", err)
			}

			if err := s.holdUnitsTx(ctx, tx, booking); err != nil {
				return err
			}

			if err := s.paymentRepo.InsertTx(ctx, tx, payment); err != nil {
				return fmt.Errorf("failed to record offline payment: %w", err)
			}

			return s.redeemPromo(ctx, tx, booking)
		})
		if err != nil {
			log.Error().Err(err).Str("booking", booking.ID).Msg("failed to create paid manual booking")

			return res, err
		}
	}

	metrics.IncBookingCreated(model.SourceManual)

	res.FromModel(booking)
	s.publish(ctx, kafka.EventBookingCreated, res)

	if booking.Status == model.StatusConfirmed {
		s.notifyAsync(ctx, booking.ID)
	}

	return res, nil
}

func (s *serviceImpl) RecordOfflinePayment(ctx context.Context, req dto.RecordOfflinePaymentRequest, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RecordOfflinePayment")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	booking, err := s.get(ctx, id)
	if err != nil {
		return res, err
	}

	if booking.Status == model.StatusConfirmed {
		return res, ErrAlreadyConfirmed
	}

	payment := s.offlinePayment(booking, req.Method, req.Reference, user)

	err = s.transactor.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.paymentRepo.InsertTx(ctx, tx, payment); err != nil {
			return fmt.Errorf("failed to record offline payment: %w", err)
		}

		return s.ConfirmTx(ctx, tx, booking)
	})
	if err != nil {
		log.Error().Err(err).Str("booking", id).Msg("failed to record offline payment")

		return res, err
	}

	s.notifyAsync(ctx, id)

	return s.Get(ctx, id)
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

func (s *serviceImpl) GetMine(ctx context.Context, req gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetMine")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if user == constant.Empty {
		return res, failure.Unauthorized("Authentication required")
	}

	return s.GetAll(ctx, req, shared.FilterByField(model.FieldUserID, user, model.TableName))
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.getVisible(ctx, id)
	if err != nil {
		return res, err
	}

	payments, err := s.payments(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(booking)
	res.WithPayments(payments)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateBookingRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req == (dto.UpdateBookingRequest{}) {
		return failure.BadRequestFromString("update request cannot be empty")
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check booking existence")

		return fmt.Errorf("failed to check booking existence: %w", err)
	}

	if !exist {
		return errBookingNotFound
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, user), filter); err != nil {
		log.Error().Err(err).Msg("failed to update booking")

		return fmt.Errorf("failed to update booking: %w", err)
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
		log.Error().Err(err).Msg("failed to check booking existence")

		return fmt.Errorf("failed to check booking existence: %w", err)
	}

	if !exist {
		return errBookingNotFound
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		if shared.IsFkViolation(err) {
			return errBookingHasPaid
		}

		log.Error().Err(err).Msg("failed to delete booking")

		return fmt.Errorf("failed to delete booking: %w", err)
	}

	return nil
}

func (s *serviceImpl) Invoice(ctx context.Context, id string) (res []byte, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Invoice")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.getVisible(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.renderInvoice(ctx, booking)
}

func (s *serviceImpl) Export(ctx context.Context, filter gDto.FilterGroup) (res []byte, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Export")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	models, err := s.repo.GetAll(ctx, gDto.QueryParams{
		Limit:   exportLimit,
		SortBy:  constant.FieldCreatedAt,
		SortDir: gDto.SortDirDesc,
	}, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings for export")

		return nil, fmt.Errorf("failed to get bookings for export: %w", err)
	}

	var buf bytes.Buffer
	if err = document.RenderExport(&buf, models); err != nil {
		log.Error().Err(err).Msg("failed to render booking export")

		return nil, fmt.Errorf("failed to render booking export: %w", err)
	}

	return buf.Bytes(), nil
}

// ConfirmTx moves a PENDING booking to CONFIRMED inside sqltx, re-checks room inventory under a room
// lock, and redeems the promo code.
func (s *serviceImpl) ConfirmTx(ctx context.Context, sqltx *sqlx.Tx, booking model.Booking) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ConfirmTx")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if user == constant.Empty {
		user = constant.ContextSystem
	}

	update := shared.TransformFields(struct{}{}, user)
	update[model.FieldStatus] = model.StatusConfirmed
	update[model.FieldConfirmedAt] = s.now()

	affected, err := s.repo.UpdateTxAffected(ctx, sqltx, update, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Value: booking.ID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{
				ArgName:  "current_status",
				Field:    model.FieldStatus,
				Value:    model.StatusPending,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to confirm booking: %w", err)
	}

	if affected == 0 {
		return ErrAlreadyConfirmed
	}

	if err = s.holdUnitsTx(ctx, sqltx, booking); err != nil {
		return err
	}

	return s.redeemPromo(ctx, sqltx, booking)
}

// holdUnitsTx runs after booking is already CONFIRMED inside sqltx, so its own rooms are part of the count.
func (s *serviceImpl) holdUnitsTx(ctx context.Context, sqltx *sqlx.Tx, booking model.Booking) error {
	inventory, booked, err := s.repo.LockAvailabilityTx(ctx, sqltx, booking.RoomID, booking.CheckIn, booking.CheckOut)
	if err != nil {
		return fmt.Errorf("failed to check room availability: %w", err)
	}

	if booked > inventory {
		log.Warn().Str("booking", booking.ID).Str("room", booking.RoomID).Int("booked", booked).Int("inventory", inventory).
			Msg("room sold out before confirmation")

		return ErrSoldOut
	}

	return nil
}

// NotifyConfirmed emails the guest and publishes booking.confirmed. Failures are only logged.
func (s *serviceImpl) NotifyConfirmed(ctx context.Context, id string) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".NotifyConfirmed")
	defer scope.End()

	booking, err := s.get(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("booking", id).Msg("failed to load confirmed booking")

		return
	}

	var res dto.BookingResponse
	res.FromModel(booking)

	if err := s.kafka.SendMessages(ctx, s.cfg.Kafka.BookingTopic, kafka.Message{
		Key:   booking.ID,
		Event: kafka.EventBookingConfirmed,
		Value: res,
	}); err != nil {
		log.Error().Err(err).Str("booking", id).Msg("failed to publish booking confirmation")
	}

	if booking.GuestEmail == constant.Empty {
		return
	}

	message := mailer.Mail{
		To:      []string{booking.GuestEmail},
		Subject: fmt.Sprintf("%s booking confirmed", s.cfg.App.Name),
		Body:    confirmationBody(booking),
	}

	if invoice, err := s.renderInvoice(ctx, booking); err == nil {
		message.Attachments = []mailer.Attachment{{
			Name:        fmt.Sprintf(invoiceName, booking.ID),
			ContentType: constant.ContentTypePDF,
			Data:        invoice,
		}}
	}

	if err := s.mailer.Send(ctx, message); err != nil {
		log.Error().Err(err).Str("booking", id).Msg("failed to send booking confirmation")
	}
}

func (s *serviceImpl) quote(ctx context.Context, req dto.QuoteRequest, opts quoteOptions) (res quote, err error) {
	res.checkIn, res.checkOut, err = req.Dates()
	if err != nil {
		return res, err
	}

	if opts.manual {
		_, err = pricing.Nights(res.checkIn, res.checkOut)
	} else {
		err = pricing.ValidateStayDates(res.checkIn, res.checkOut, s.now())
	}

	if err != nil {
		return res, err
	}

	res.room, err = s.roomRepo.Get(ctx, shared.FilterByID(req.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if res.room.ID == constant.Empty {
		return res, errRoomNotFound
	}

	if !res.room.Active && !opts.manual {
		return res, errRoomInactive
	}

	if req.Adults > res.room.Person*pricing.ClampRooms(req.Rooms) {
		return res, errCapacityExceeded
	}

	rates := s.rates
	if opts.gstPercent != nil {
		rates.GSTPercent = *opts.gstPercent
	}

	input := pricing.Input{
		PricePerNight: res.room.PricePerNight,
		CheckIn:       res.checkIn,
		CheckOut:      res.checkOut,
		Rooms:         req.Rooms,
		Adults:        req.Adults,
		Children:      req.Children,
		ExtraAdults:   req.ExtraAdults,
		MealPlans:     req.DatePlans(),
		MealTier:      pricing.ResolveTier(res.room.MealTier, res.room.Title),
	}

	if opts.pricePerNight != nil {
		input.PricePerNight = *opts.pricePerNight
	}

	if strings.TrimSpace(req.PromoCode) != constant.Empty {
		undiscounted, err := pricing.Calculate(rates, input)
		if err != nil {
			return res, err
		}

		res.promo, err = s.promoService.ValidateForBaseAmount(ctx, req.PromoCode, undiscounted.Subtotal)
		if err != nil {
			return res, err
		}

		input.Discount = res.promo.Discount
	}

	res.breakdown, err = pricing.Calculate(rates, input)
	if err != nil {
		return res, err
	}

	return res, nil
}

func (s *serviceImpl) checkAvailability(ctx context.Context, q quote) error {
	booked, err := s.repo.BookedUnits(ctx, q.room.ID, q.checkIn, q.checkOut)
	if err != nil {
		log.Error().Err(err).Msg("failed to check room availability")

		return fmt.Errorf("failed to check room availability: %w", err)
	}

	if booked+q.breakdown.Rooms > q.room.Inventory {
		return ErrSoldOut
	}

	return nil
}

func (s *serviceImpl) redeemPromo(ctx context.Context, sqltx *sqlx.Tx, booking model.Booking) error {
	if booking.PromoCodeID == nil {
		return nil
	}

	ok, err := s.promoRepo.IncrementUsageTx(ctx, sqltx, *booking.PromoCodeID)
	if err != nil {
		return fmt.Errorf("failed to redeem promo code: %w", err)
	}

	if !ok {
		log.Warn().Str("booking", booking.ID).Str("promo", booking.PromoCode).Msg("promo code usage cap reached at confirmation")
	}

	return nil
}

func (s *serviceImpl) get(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, errBookingNotFound
	}

	return booking, nil
}

// getVisible hides bookings of other customers behind a 404.
func (s *serviceImpl) getVisible(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.get(ctx, id)
	if err != nil {
		return booking, err
	}

	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	if role == constant.RoleAdmin || role == constant.RoleStaff {
		return booking, nil
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if user == constant.Empty || booking.Owner() != user {
		return model.Booking{}, errBookingNotFound
	}

	return booking, nil
}

func (s *serviceImpl) payments(ctx context.Context, bookingID string) ([]paymentModel.Payment, error) {
	payments, err := s.paymentRepo.GetAll(ctx, gDto.QueryParams{
		SortBy:  constant.FieldCreatedAt,
		SortDir: gDto.SortDirAsc,
	}, shared.FilterByField(paymentModel.FieldBookingID, bookingID, paymentModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking payments")

		return nil, fmt.Errorf("failed to get booking payments: %w", err)
	}

	return payments, nil
}

func (s *serviceImpl) renderInvoice(ctx context.Context, booking model.Booking) ([]byte, error) {
	payments, err := s.payments(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	err = document.RenderInvoice(&buf, document.Invoice{
		Letterhead: document.Letterhead{Name: s.cfg.App.Name, SiteURL: s.cfg.App.PublicSiteURL},
		Booking:    booking,
		Payments:   payments,
		IssuedAt:   s.now(),
	})
	if err != nil {
		log.Error().Err(err).Str("booking", booking.ID).Msg("failed to render invoice")

		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *serviceImpl) offlinePayment(booking model.Booking, method, reference, user string) paymentModel.Payment {
	if method == constant.Empty {
		method = defaultOfflineMethod
	}

	now := s.now()

	return paymentModel.Payment{
		ID:        uuid.NewString(),
		BookingID: booking.ID,
		Provider:  paymentModel.ProviderOffline,
		Status:    paymentModel.StatusPaid,
		Amount:    booking.Amount,
		Currency:  s.cfg.External.Razorpay.Currency,
		Method:    method,
		Reference: reference,
		PaidAt:    &now,
		Metadata:  shared.NewMetadata(user),
	}
}

func (s *serviceImpl) publish(ctx context.Context, event string, booking dto.BookingResponse) {
	go func() {
		c := context.WithoutCancel(ctx)

		err := s.kafka.SendMessages(c, s.cfg.Kafka.BookingTopic, kafka.Message{
			Key:   booking.ID,
			Event: event,
			Value: booking,
		})
		if err != nil {
			log.Error().Err(err).Str("booking", booking.ID).Str("event", event).Msg("failed to publish booking event")
		}
	}()
}

func (s *serviceImpl) notifyAsync(ctx context.Context, id string) {
	go s.NotifyConfirmed(context.WithoutCancel(ctx), id)
}

func newBooking(q quote, req dto.QuoteRequest, user string) model.Booking {
	b := q.breakdown

	plans := make(model.MealPlans, len(b.MealPlanByDate))
	for i, plan := range b.MealPlanByDate {
		plans[i] = model.MealPlanEntry{Date: plan.Date.Format(constant.DayFormat), Plan: string(plan.Plan)}
	}

	booking := model.Booking{
		ID:             uuid.NewString(),
		RoomID:         q.room.ID,
		RoomTitle:      q.room.Title,
		CheckIn:        q.checkIn,
		CheckOut:       q.checkOut,
		Nights:         b.Nights,
		Rooms:          b.Rooms,
		Guests:         b.Guests,
		Adults:         req.Adults,
		Children:       req.Children,
		ExtraAdults:    req.ExtraAdults,
		MealPlanByDate: plans,
		SubtotalAmount: b.Subtotal,
		DiscountAmount: b.Discount,
		BaseAmount:     b.BaseAmount,
		GSTPercent:     b.GSTPercent,
		GSTAmount:      b.GSTAmount,
		Amount:         b.Amount,
		Status:         model.StatusPending,
		Metadata:       shared.NewMetadata(user),
	}

	if q.promo.PromoCodeID != constant.Empty {
		booking.PromoCodeID = &q.promo.PromoCodeID
		booking.PromoCode = q.promo.Code
	}

	return booking
}

func confirmationBody(booking model.Booking) string {
	var body strings.Builder

	fmt.Fprintf(&body, "Dear %s,\n\n", booking.GuestName)
	fmt.Fprintf(&body, "Your booking %s is confirmed.\n\n", booking.ID)
	fmt.Fprintf(&body, "Room: %s x %d\n", booking.RoomTitle, booking.Rooms)
	fmt.Fprintf(&body, "Check-in: %s\n", timezone.Format(booking.CheckIn, constant.DisplayFormat))
	fmt.Fprintf(&body, "Check-out: %s\n", timezone.Format(booking.CheckOut, constant.DisplayFormat))
	fmt.Fprintf(&body, "Guests: %d\n", booking.Guests)
	fmt.Fprintf(&body, "Total paid: INR %.2f\n\n", booking.Amount)
	body.WriteString("The invoice is attached. We look forward to hosting you.\n")

	return body.String()
}
