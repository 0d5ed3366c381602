package dto

import (
	"time"

	"resort/internal/domains/booking/model"
	paymentModel "resort/internal/domains/payment/model"
	paymentDto "resort/internal/domains/payment/model/dto"
	"resort/internal/domains/pricing"
	"resort/shared"
	"resort/shared/constant"
	gDto "resort/shared/dto"
	"resort/shared/failure"
	"resort/shared/timezone"
)

var errInvalidDate = failure.BadRequestFromString("Invalid date, expected YYYY-MM-DD")

type MealPlanRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Plan string `json:"plan" validate:"required,oneof=EP CP MAP"`
}

type QuoteRequest struct {
	RoomID      string            `json:"room_id"      validate:"required,uuid"`
	CheckIn     string            `json:"check_in"     validate:"required,datetime=2006-01-02"`
	CheckOut    string            `json:"check_out"    validate:"required,datetime=2006-01-02"`
	Rooms       int               `json:"rooms"        validate:"omitempty,min=0"`
	Adults      int               `json:"adults"       validate:"required,min=1,max=100"`
	Children    int               `json:"children"     validate:"omitempty,min=0,max=100"`
	ExtraAdults int               `json:"extra_adults" validate:"omitempty,min=0,max=100"`
	MealPlans   []MealPlanRequest `json:"meal_plans"   validate:"omitempty,max=366,dive"`
	PromoCode   string            `json:"promo_code"   validate:"omitempty,max=50"`
}

// Dates parses check-in and check-out in the application timezone.
func (q *QuoteRequest) Dates() (checkIn, checkOut time.Time, err error) {
	checkIn, err = timezone.Parse(constant.DayFormat, q.CheckIn)
	if err != nil {
		return checkIn, checkOut, errInvalidDate
	}

	checkOut, err = timezone.Parse(constant.DayFormat, q.CheckOut)
	if err != nil {
		return checkIn, checkOut, errInvalidDate
	}

	return checkIn, checkOut, nil
}

// DatePlans drops entries whose date does not parse.
func (q *QuoteRequest) DatePlans() []pricing.DatePlan {
	plans := make([]pricing.DatePlan, 0, len(q.MealPlans))

	for _, plan := range q.MealPlans {
		date, err := timezone.Parse(constant.DayFormat, plan.Date)
		if err != nil {
			continue
		}

		plans = append(plans, pricing.DatePlan{Date: date, Plan: pricing.MealPlan(plan.Plan)})
	}

	return plans
}

type CreateBookingRequest struct {
	QuoteRequest
	GuestName  string `json:"guest_name"  validate:"required,max=100"`
	GuestEmail string `json:"guest_email" validate:"omitempty,email,max=100"`
	GuestPhone string `json:"guest_phone" validate:"omitempty,max=20"`
	Notes      string `json:"notes"       validate:"omitempty,max=1000"`
}

type CreateManualBookingRequest struct {
	QuoteRequest
	GuestName     string   `json:"guest_name"      validate:"required,max=100"`
	GuestEmail    string   `json:"guest_email"     validate:"omitempty,email,max=100"`
	GuestPhone    string   `json:"guest_phone"     validate:"required,max=20"`
	Notes         string   `json:"notes"           validate:"omitempty,max=1000"`
	PricePerNight *int     `json:"price_per_night" validate:"omitempty,min=1"`
	GSTPercent    *float64 `json:"gst_percent"     validate:"omitempty,min=0,max=28"`
	MarkPaid      bool     `json:"mark_paid"`
	PaymentMethod string   `json:"payment_method"  validate:"omitempty,max=50"`
	Reference     string   `json:"reference"       validate:"omitempty,max=100"`
}

type RecordOfflinePaymentRequest struct {
	Method    string `json:"method"    validate:"required,max=50"`
	Reference string `json:"reference" validate:"omitempty,max=100"`
}

type UpdateBookingRequest struct {
	GuestName  string `db:"guest_name"  json:"guest_name"  validate:"omitempty,max=100"`
	GuestEmail string `db:"guest_email" json:"guest_email" validate:"omitempty,email,max=100"`
	GuestPhone string `db:"guest_phone" json:"guest_phone" validate:"omitempty,max=20"`
	Notes      string `db:"notes"       json:"notes"       validate:"omitempty,max=1000"`
}

type MealPlanResponse struct {
	Date string `json:"date"`
	Plan string `json:"plan"`
}

type QuoteResponse struct {
	RoomID           string             `json:"room_id"`
	RoomTitle        string             `json:"room_title"`
	CheckIn          string             `json:"check_in"`
	CheckOut         string             `json:"check_out"`
	Nights           int                `json:"nights"`
	Rooms            int                `json:"rooms"`
	Guests           int                `json:"guests"`
	PricePerNight    int                `json:"price_per_night"`
	Base             float64            `json:"base"`
	ChildCharge      float64            `json:"child_charge"`
	ExtraAdultCharge float64            `json:"extra_adult_charge"`
	CPNights         int                `json:"cp_nights"`
	CPAmount         float64            `json:"cp_amount"`
	MAPNights        int                `json:"map_nights"`
	MAPRate          int                `json:"map_rate"`
	MAPAmount        float64            `json:"map_amount"`
	Subtotal         float64            `json:"subtotal"`
	PromoCode        string             `json:"promo_code,omitempty"`
	Discount         float64            `json:"discount"`
	BaseAmount       float64            `json:"base_amount"`
	GSTPercent       float64            `json:"gst_percent"`
	GSTAmount        float64            `json:"gst_amount"`
	Amount           float64            `json:"amount"`
	MealPlanByDate   []MealPlanResponse `json:"meal_plan_by_date"`
}

func (r *QuoteResponse) FromBreakdown(breakdown pricing.Breakdown) {
	r.Nights = breakdown.Nights
	r.Rooms = breakdown.Rooms
	r.Guests = breakdown.Guests
	r.Base = breakdown.Base
	r.ChildCharge = breakdown.ChildCharge
	r.ExtraAdultCharge = breakdown.ExtraAdultCharge
	r.CPNights = breakdown.CPNights
	r.CPAmount = breakdown.CPAmount
	r.MAPNights = breakdown.MAPNights
	r.MAPRate = breakdown.MAPRate
	r.MAPAmount = breakdown.MAPAmount
	r.Subtotal = breakdown.Subtotal
	r.Discount = breakdown.Discount
	r.BaseAmount = breakdown.BaseAmount
	r.GSTPercent = breakdown.GSTPercent
	r.GSTAmount = breakdown.GSTAmount
	r.Amount = breakdown.Amount

	r.MealPlanByDate = make([]MealPlanResponse, len(breakdown.MealPlanByDate))
	for i, plan := range breakdown.MealPlanByDate {
		r.MealPlanByDate[i] = MealPlanResponse{
			Date: timezone.Format(plan.Date, constant.DayFormat),
			Plan: string(plan.Plan),
		}
	}
}

type BookingResponse struct {
	ID             string                       `json:"id"`
	UserID         string                       `json:"user_id,omitempty"`
	RoomID         string                       `json:"room_id"`
	RoomTitle      string                       `json:"room_title"`
	GuestName      string                       `json:"guest_name"`
	GuestEmail     string                       `json:"guest_email"`
	GuestPhone     string                       `json:"guest_phone"`
	CheckIn        string                       `json:"check_in"`
	CheckOut       string                       `json:"check_out"`
	Nights         int                          `json:"nights"`
	Rooms          int                          `json:"rooms"`
	Guests         int                          `json:"guests"`
	Adults         int                          `json:"adults"`
	Children       int                          `json:"children"`
	ExtraAdults    int                          `json:"extra_adults"`
	MealPlanByDate []MealPlanResponse           `json:"meal_plan_by_date"`
	PromoCode      string                       `json:"promo_code,omitempty"`
	SubtotalAmount float64                      `json:"subtotal_amount"`
	DiscountAmount float64                      `json:"discount_amount"`
	BaseAmount     float64                      `json:"base_amount"`
	GSTPercent     float64                      `json:"gst_percent"`
	GSTAmount      float64                      `json:"gst_amount"`
	Amount         float64                      `json:"amount"`
	Source         string                       `json:"source"`
	Status         string                       `json:"status"`
	Notes          string                       `json:"notes,omitempty"`
	ConfirmedAt    string                       `json:"confirmed_at,omitempty"`
	Payments       []paymentDto.PaymentResponse `json:"payments,omitempty"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.UserID = model.Owner()
	r.RoomID = model.RoomID
	r.RoomTitle = model.RoomTitle
	r.GuestName = model.GuestName
	r.GuestEmail = model.GuestEmail
	r.GuestPhone = model.GuestPhone
	r.CheckIn = timezone.Format(model.CheckIn, constant.DayFormat)
	r.CheckOut = timezone.Format(model.CheckOut, constant.DayFormat)
	r.Nights = model.Nights
	r.Rooms = model.Rooms
	r.Guests = model.Guests
	r.Adults = model.Adults
	r.Children = model.Children
	r.ExtraAdults = model.ExtraAdults
	r.PromoCode = model.PromoCode
	r.SubtotalAmount = model.SubtotalAmount
	r.DiscountAmount = model.DiscountAmount
	r.BaseAmount = model.BaseAmount
	r.GSTPercent = model.GSTPercent
	r.GSTAmount = model.GSTAmount
	r.Amount = model.Amount
	r.Source = model.Source
	r.Status = model.Status
	r.Notes = model.Notes

	r.MealPlanByDate = make([]MealPlanResponse, len(model.MealPlanByDate))
	for i, plan := range model.MealPlanByDate {
		r.MealPlanByDate[i] = MealPlanResponse(plan)
	}

	if model.ConfirmedAt != nil {
		r.ConfirmedAt = timezone.Format(*model.ConfirmedAt, constant.DateFormat)
	}

	r.Metadata.FromModel(model.Metadata)
}

func (r *BookingResponse) WithPayments(payments []paymentModel.Payment) {
	r.Payments = make([]paymentDto.PaymentResponse, len(payments))
	for i, payment := range payments {
		r.Payments[i].FromModel(payment)
	}
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}
