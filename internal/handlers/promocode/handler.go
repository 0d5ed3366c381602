package promocode

import (
	"net/http"

	"resort/infras/otel"
	"resort/internal/domains/promocode/model"
	"resort/internal/domains/promocode/model/dto"
	"resort/internal/domains/promocode/service"
	"resort/shared"
	"resort/shared/constant"
	gDto "resort/shared/dto"
	"resort/shared/validator"
	"resort/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.PromoCode
	otel    otel.Otel
}

func New(service service.PromoCode, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Post("/promo-codes/validate", handler.ValidatePromoCode)
}

func (handler *Handler) AdminRouter(router chi.Router) {
	router.Route("/promo-codes", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreatePromoCode)
		routerGroup.Get("/", handler.GetPromoCodes)
		routerGroup.Get("/{id}", handler.GetPromoCodeByID)
		routerGroup.Patch("/{id}", handler.UpdatePromoCode)
		routerGroup.Delete("/{id}", handler.DeletePromoCode)
	})
}

// ValidatePromoCode previews the discount a code gives on an amount.
// @Summary Validate a promo code
// @Tags Promo Code
// @Accept json
// @Produce json
// @Param request body dto.ValidatePromoCodeRequest true "Code and amount"
// @Success 200 {object} response.Data[dto.Discount]
// @Failure 400 {object} response.Error "Invalid, inactive, expired or exhausted code"
// @Router /api/promo-codes/validate [post]
func (handler *Handler) ValidatePromoCode(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ValidatePromoCode")
	defer scope.End()

	req := dto.ValidatePromoCodeRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	discount, err := handler.service.ValidateForBaseAmount(ctx, req.Code, req.BaseAmount)
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Str("code", req.Code).Msg("promo code rejected")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, discount)
}

// CreatePromoCode
// @Summary Create a promo code
// @Tags Admin Promo Code
// @Accept json
// @Produce json
// @Param request body dto.CreatePromoCodeRequest true "Promo code"
// @Success 201 {object} response.Data[response.Message]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error "Code already exists"
// @Router /admin-api/promo-codes [post]
// @Security SessionAuth
func (handler *Handler) CreatePromoCode(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreatePromoCode")
	defer scope.End()

	req := dto.CreatePromoCodeRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Create(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create promo code")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusCreated, "Promo code created successfully")
}

// GetPromoCodes
// @Summary List promo codes
// @Tags Admin Promo Code
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param q query string false "Search by code"
// @Param is_active query boolean false "Filter by active flag"
// @Success 200 {object} response.Data[dto.GetPromoCodesResponse]
// @Router /admin-api/promo-codes [get]
// @Security SessionAuth
func (handler *Handler) GetPromoCodes(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPromoCodes")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldCode,
				Operator: gDto.FilterOperatorLike,
				Value:    r.URL.Query().Get(constant.RequestParamSearch),
				Table:    model.TableName,
			},
		},
	}

	if active := shared.ConvertStringToBool(r.URL.Query().Get(model.FieldIsActive)); active != nil {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldIsActive,
			Operator: gDto.FilterOperatorEq,
			Value:    *active,
			Table:    model.TableName,
		})
	}

	promoCodes, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get promo codes")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, promoCodes)
}

// GetPromoCodeByID
// @Summary Get a promo code
// @Tags Admin Promo Code
// @Produce json
// @Param id path string true "Promo code ID"
// @Success 200 {object} response.Data[dto.PromoCodeResponse]
// @Failure 404 {object} response.Error
// @Router /admin-api/promo-codes/{id} [get]
// @Security SessionAuth
func (handler *Handler) GetPromoCodeByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPromoCodeByID")
	defer scope.End()

	promoCode, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, promoCode)
}

// UpdatePromoCode
// @Summary Update a promo code
// @Tags Admin Promo Code
// @Accept json
// @Produce json
// @Param id path string true "Promo code ID"
// @Param request body dto.UpdatePromoCodeRequest true "Fields to change"
// @Success 200 {object} response.Data[response.Message]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /admin-api/promo-codes/{id} [patch]
// @Security SessionAuth
func (handler *Handler) UpdatePromoCode(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdatePromoCode")
	defer scope.End()

	req := dto.UpdatePromoCodeRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update promo code")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Promo code updated successfully")
}

// DeletePromoCode
// @Summary Delete a promo code
// @Tags Admin Promo Code
// @Produce json
// @Param id path string true "Promo code ID"
// @Success 200 {object} response.Data[response.Message]
// @Failure 404 {object} response.Error
// @Router /admin-api/promo-codes/{id} [delete]
// @Security SessionAuth
func (handler *Handler) DeletePromoCode(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeletePromoCode")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete promo code")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Promo code deleted successfully")
}
