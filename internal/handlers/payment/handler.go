package payment

import (
	"net/http"

	"resort/infras/otel"
	"resort/internal/domains/payment/model"
	"resort/internal/domains/payment/model/dto"
	"resort/internal/domains/payment/service"
	"resort/shared/constant"
	gDto "resort/shared/dto"
	"resort/shared/validator"
	"resort/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Payment
	otel    otel.Otel
}

func New(service service.Payment, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/payments", func(routerGroup chi.Router) {
		routerGroup.Post("/order", handler.CreateOrder)
		routerGroup.Post("/verify", handler.Verify)
	})
}

func (handler *Handler) AdminRouter(router chi.Router) {
	router.Route("/payments", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetPayments)
		routerGroup.Get("/{id}", handler.GetPaymentByID)
	})
}

// CreateOrder opens a gateway order for a pending booking.
// @Summary Create a payment order
// @Description Returns the key id and order the checkout widget needs. Amount is in paise.
// @Tags Payment
// @Accept json
// @Produce json
// @Param request body dto.CreateOrderRequest true "Booking"
// @Success 201 {object} response.Data[dto.OrderResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Booking not awaiting payment"
// @Router /api/payments/order [post]
// @Security SessionAuth
func (handler *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateOrder")
	defer scope.End()

	req := dto.CreateOrderRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	order, err := handler.service.CreateOrder(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking", req.BookingID).Msg("failed to create payment order")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusCreated, order)
}

// Verify confirms the booking once the checkout signature checks out.
// @Summary Verify a payment
// @Tags Payment
// @Accept json
// @Produce json
// @Param request body dto.VerifyRequest true "Checkout result"
// @Success 200 {object} response.Data[dto.VerifyResponse]
// @Failure 400 {object} response.Error "Payment verification failed"
// @Failure 404 {object} response.Error
// @Router /api/payments/verify [post]
// @Security SessionAuth
func (handler *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Verify")
	defer scope.End()

	req := dto.VerifyRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Verify(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("order", req.OrderID).Msg("failed to verify payment")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Payment verified for booking " + res.BookingID)

	response.WithJSON(w, http.StatusOK, res)
}

// GetPayments
// @Summary List payments
// @Description Settled gateway payments missing a method are enriched from the gateway on read.
// @Tags Admin Payment
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "CREATED or PAID"
// @Param provider query string false "RAZORPAY or OFFLINE"
// @Param booking_id query string false "Booking ID"
// @Success 200 {object} response.Data[dto.GetPaymentsResponse]
// @Router /admin-api/payments [get]
// @Security SessionAuth
func (handler *Handler) GetPayments(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPayments")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	for _, field := range []string{model.FieldStatus, model.FieldProvider, model.FieldBookingID} {
		if value := r.URL.Query().Get(field); value != constant.Empty {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    field,
				Operator: gDto.FilterOperatorEq,
				Value:    value,
				Table:    model.TableName,
			})
		}
	}

	payments, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get payments")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, payments)
}

// GetPaymentByID
// @Summary Get a payment
// @Tags Admin Payment
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Data[dto.PaymentResponse]
// @Failure 404 {object} response.Error
// @Router /admin-api/payments/{id} [get]
// @Security SessionAuth
func (handler *Handler) GetPaymentByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPaymentByID")
	defer scope.End()

	payment, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, payment)
}
