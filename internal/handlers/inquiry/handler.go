package inquiry

import (
	"net/http"

	"resort/infras/otel"
	"resort/internal/domains/inquiry/model"
	"resort/internal/domains/inquiry/model/dto"
	"resort/internal/domains/inquiry/service"
	"resort/shared/constant"
	gDto "resort/shared/dto"
	"resort/shared/validator"
	"resort/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Inquiry
	otel    otel.Otel
}

func New(service service.Inquiry, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Post("/inquiries", handler.CreateInquiry)
}

func (handler *Handler) AdminRouter(router chi.Router) {
	router.Route("/inquiries", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetInquiries)
		routerGroup.Get("/{id}", handler.GetInquiryByID)
		routerGroup.Patch("/{id}/read", handler.MarkInquiryRead)
		routerGroup.Delete("/{id}", handler.DeleteInquiry)
	})
}

// CreateInquiry
// @Summary Submit a contact form
// @Tags Inquiry
// @Accept json
// @Produce json
// @Param request body dto.CreateInquiryRequest true "Inquiry"
// @Success 201 {object} response.Data[dto.InquiryResponse]
// @Failure 400 {object} response.Error
// @Router /api/inquiries [post]
func (handler *Handler) CreateInquiry(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateInquiry")
	defer scope.End()

	req := dto.CreateInquiryRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	inquiry, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create inquiry")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusCreated, inquiry)
}

// GetInquiries
// @Summary List inquiries
// @Tags Admin Inquiry
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "UNREAD or READ"
// @Success 200 {object} response.Data[dto.GetInquiriesResponse]
// @Router /admin-api/inquiries [get]
// @Security SessionAuth
func (handler *Handler) GetInquiries(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetInquiries")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if status := r.URL.Query().Get(model.FieldStatus); status != constant.Empty {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    status,
			Table:    model.TableName,
		})
	}

	inquiries, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get inquiries")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, inquiries)
}

// GetInquiryByID
// @Summary Get an inquiry
// @Tags Admin Inquiry
// @Produce json
// @Param id path string true "Inquiry ID"
// @Success 200 {object} response.Data[dto.InquiryResponse]
// @Failure 404 {object} response.Error
// @Router /admin-api/inquiries/{id} [get]
// @Security SessionAuth
func (handler *Handler) GetInquiryByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetInquiryByID")
	defer scope.End()

	inquiry, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, inquiry)
}

// MarkInquiryRead
// @Summary Mark an inquiry as read
// @Tags Admin Inquiry
// @Produce json
// @Param id path string true "Inquiry ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Router /admin-api/inquiries/{id}/read [patch]
// @Security SessionAuth
func (handler *Handler) MarkInquiryRead(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".MarkInquiryRead")
	defer scope.End()

	if err := handler.service.MarkRead(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to mark inquiry read")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Inquiry marked as read")
}

// DeleteInquiry
// @Summary Delete an inquiry
// @Tags Admin Inquiry
// @Produce json
// @Param id path string true "Inquiry ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Router /admin-api/inquiries/{id} [delete]
// @Security SessionAuth
func (handler *Handler) DeleteInquiry(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteInquiry")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete inquiry")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Inquiry deleted")
}
