package booking

import (
	"net/http"

	"resort/infras/otel"
	"resort/internal/domains/booking/model"
	"resort/internal/domains/booking/model/dto"
	"resort/internal/domains/booking/service"
	"resort/shared/constant"
	gDto "resort/shared/dto"
	"resort/shared/timezone"
	"resort/shared/validator"
	"resort/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	queryFrom     = "from"
	queryTo       = "to"
	exportName    = "bookings.xlsx"
	invoicePrefix = "invoice-"
)

type Handler struct {
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Post("/quote", handler.Quote)
		routerGroup.Post("/", handler.CreateBooking)
		routerGroup.Get("/mine", handler.GetMyBookings)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Get("/{id}/invoice", handler.DownloadInvoice)
	})
}

func (handler *Handler) AdminRouter(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetBookings)
		routerGroup.Post("/quote", handler.Quote)
		routerGroup.Post("/manual", handler.CreateManualBooking)
		routerGroup.Get("/export", handler.ExportBookings)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Patch("/{id}", handler.UpdateBooking)
		routerGroup.Delete("/{id}", handler.DeleteBooking)
		routerGroup.Post("/{id}/payments", handler.RecordOfflinePayment)
		routerGroup.Get("/{id}/invoice", handler.DownloadInvoice)
	})
}

// Quote prices a stay without creating a booking.
// @Summary Quote a stay
// @Description Price a stay with meal plans, extra guests, GST and an optional promo code.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.QuoteRequest true "Stay"
// @Success 200 {object} response.Data[dto.QuoteResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /api/bookings/quote [post]
func (handler *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Quote")
	defer scope.End()

	req := dto.QuoteRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	quote, err := handler.service.Quote(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to quote booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, quote)
}

// CreateBooking handles the creation of a new booking.
// @Summary Create a new booking
// @Description Create a PENDING online booking for the signed-in guest. Pay it through /api/payments/order.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 409 {object} response.Error "Sold out"
// @Failure 500 {object} response.Error
// @Router /api/bookings [post]
// @Security SessionAuth
func (handler *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	booking, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create booking")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Booking created successfully by user " + user)

	response.WithJSON(w, http.StatusCreated, booking)
}

// CreateManualBooking records a walk-in or phone booking.
// @Summary Create a manual booking
// @Description Staff booking with optional price and GST overrides. mark_paid confirms it with an offline payment.
// @Tags Admin Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateManualBookingRequest true "Manual booking"
// @Success 201 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /admin-api/bookings/manual [post]
// @Security SessionAuth
func (handler *Handler) CreateManualBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateManualBooking")
	defer scope.End()

	req := dto.CreateManualBookingRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	booking, err := handler.service.CreateManual(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create manual booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusCreated, booking)
}

// RecordOfflinePayment confirms a pending booking paid at the desk.
// @Summary Record an offline payment
// @Tags Admin Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.RecordOfflinePaymentRequest true "Payment"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Already confirmed"
// @Router /admin-api/bookings/{id}/payments [post]
// @Security SessionAuth
func (handler *Handler) RecordOfflinePayment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RecordOfflinePayment")
	defer scope.End()

	req := dto.RecordOfflinePaymentRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	booking, err := handler.service.RecordOfflinePayment(ctx, req, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to record offline payment")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// GetBookings retrieves all booking items based on query parameters.
// @Summary Get all bookings
// @Tags Admin Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param q query string false "Search guest name, email or phone"
// @Param status query string false "PENDING or CONFIRMED"
// @Param source query string false "ONLINE or MANUAL"
// @Param room_id query string false "Room ID"
// @Param from query string false "Check-in on or after (YYYY-MM-DD)"
// @Param to query string false "Check-in on or before (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.GetBookingsResponse]
// @Failure 500 {object} response.Error
// @Router /admin-api/bookings [get]
// @Security SessionAuth
func (handler *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	bookings, err := handler.service.GetAll(ctx, queryParams, filterFromQuery(r))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// ExportBookings downloads the filtered bookings as a spreadsheet.
// @Summary Export bookings
// @Tags Admin Booking
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param q query string false "Search guest name, email or phone"
// @Param status query string false "PENDING or CONFIRMED"
// @Param from query string false "Check-in on or after (YYYY-MM-DD)"
// @Param to query string false "Check-in on or before (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 500 {object} response.Error
// @Router /admin-api/bookings/export [get]
// @Security SessionAuth
func (handler *Handler) ExportBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ExportBookings")
	defer scope.End()

	content, err := handler.service.Export(ctx, filterFromQuery(r))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to export bookings")

		response.WithError(w, err)

		return
	}

	response.WithFile(w, constant.ContentTypeXLSX, exportName, content)
}

// GetMyBookings retrieves the signed-in guest's bookings.
// @Summary Get my bookings
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetBookingsResponse]
// @Failure 401 {object} response.Error
// @Router /api/bookings/mine [get]
// @Security SessionAuth
func (handler *Handler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	bookings, err := handler.service.GetMine(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get user bookings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetBookingByID retrieves a booking by its ID.
// @Summary Get a booking by ID
// @Description Guests only see their own bookings. The response includes its payments.
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/bookings/{id} [get]
// @Security SessionAuth
func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	booking, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// DownloadInvoice renders the booking invoice as a PDF.
// @Summary Download invoice
// @Tags Booking
// @Produce application/pdf
// @Param id path string true "Booking ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Error
// @Router /api/bookings/{id}/invoice [get]
// @Security SessionAuth
func (handler *Handler) DownloadInvoice(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DownloadInvoice")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	content, err := handler.service.Invoice(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to render invoice")

		response.WithError(w, err)

		return
	}

	response.WithFile(w, constant.ContentTypePDF, invoicePrefix+id+".pdf", content)
}

// UpdateBooking updates guest details of a booking.
// @Summary Update a booking by ID
// @Tags Admin Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.UpdateBookingRequest true "Update Booking Request"
// @Success 200 {object} response.Data[response.Message]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /admin-api/bookings/{id} [patch]
// @Security SessionAuth
func (handler *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateBooking")
	defer scope.End()

	req := dto.UpdateBookingRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update booking")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Booking updated successfully")
}

// DeleteBooking deletes a booking by its ID.
// @Summary Delete a booking by ID
// @Tags Admin Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[response.Message]
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Booking has payments"
// @Router /admin-api/bookings/{id} [delete]
// @Security SessionAuth
func (handler *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteBooking")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete booking")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Booking deleted successfully")
}

// filterFromQuery builds the admin list filter. Unparseable dates are ignored.
func filterFromQuery(r *http.Request) gDto.FilterGroup {
	query := r.URL.Query()
	filter := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	filter.Filters = append(filter.Filters, gDto.Search(query.Get(constant.RequestParamSearch), model.TableName,
		model.FieldGuestName, model.FieldGuestEmail, model.FieldGuestPhone))

	for _, field := range []string{model.FieldStatus, model.FieldSource, model.FieldRoomID} {
		if value := query.Get(field); value != constant.Empty {
			filter.Filters = append(filter.Filters, gDto.Filter{
				Field:    field,
				Operator: gDto.FilterOperatorEq,
				Value:    value,
				Table:    model.TableName,
			})
		}
	}

	if from, err := timezone.Parse(constant.DayFormat, query.Get(queryFrom)); err == nil {
		filter.Filters = append(filter.Filters, gDto.Filter{
			ArgName:  queryFrom,
			Field:    model.FieldCheckIn,
			Operator: gDto.FilterOperatorGreaterEq,
			Value:    from,
			Table:    model.TableName,
		})
	}

	if to, err := timezone.Parse(constant.DayFormat, query.Get(queryTo)); err == nil {
		filter.Filters = append(filter.Filters, gDto.Filter{
			ArgName:  queryTo,
			Field:    model.FieldCheckIn,
			Operator: gDto.FilterOperatorLessEq,
			Value:    to,
			Table:    model.TableName,
		})
	}

	return filter
}
