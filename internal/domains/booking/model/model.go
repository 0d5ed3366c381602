package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	roomModel "resort/internal/domains/room/model"
	"resort/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID          = "id"
	FieldUserID      = "user_id"
	FieldRoomID      = "room_id"
	FieldGuestName   = "guest_name"
	FieldGuestEmail  = "guest_email"
	FieldGuestPhone  = "guest_phone"
	FieldCheckIn     = "check_in"
	FieldCheckOut    = "check_out"
	FieldRooms       = "rooms"
	FieldStatus      = "status"
	FieldSource      = "source"
	FieldNotes       = "notes"
	FieldPromoCodeID = "promo_code_id"
	FieldConfirmedAt = "confirmed_at"
)

const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"

	SourceOnline = "ONLINE"
	SourceManual = "MANUAL"
)

type MealPlanEntry struct {
	Date string `json:"date"`
	Plan string `json:"plan"`
}

// MealPlans is stored as a JSONB array.
type MealPlans []MealPlanEntry

func (m MealPlans) Value() (driver.Value, error) {
	if m == nil {
		return []byte("[]"), nil
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal meal plans: %w", err)
	}

	return b, nil
}

func (m *MealPlans) Scan(src any) error {
	var data []byte

	switch v := src.(type) {
	case nil:
		*m = MealPlans{}

		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported meal plans type %T", src)
	}

	return json.Unmarshal(data, m)
}

type Booking struct {
	ID             string     `db:"id"`
	UserID         *string    `db:"user_id"`
	RoomID         string     `db:"room_id"`
	RoomTitle      string     `db:"room_title" table:"rooms" column:"title"`
	GuestName      string     `db:"guest_name"`
	GuestEmail     string     `db:"guest_email"`
	GuestPhone     string     `db:"guest_phone"`
	CheckIn        time.Time  `db:"check_in"`
	CheckOut       time.Time  `db:"check_out"`
	Nights         int        `db:"nights"`
	Rooms          int        `db:"rooms"`
	Guests         int        `db:"guests"`
	Adults         int        `db:"adults"`
	Children       int        `db:"children"`
	ExtraAdults    int        `db:"extra_adults"`
	MealPlanByDate MealPlans  `db:"meal_plan_by_date"`
	PromoCodeID    *string    `db:"promo_code_id"`
	PromoCode      string     `db:"promo_code"`
	SubtotalAmount float64    `db:"subtotal_amount"`
	DiscountAmount float64    `db:"discount_amount"`
	BaseAmount     float64    `db:"base_amount"`
	GSTPercent     float64    `db:"gst_percent"`
	GSTAmount      float64    `db:"gst_amount"`
	Amount         float64    `db:"amount"`
	Source         string     `db:"source"`
	Status         string     `db:"status"`
	Notes          string     `db:"notes"`
	ConfirmedAt    *time.Time `db:"confirmed_at"`
	model.Metadata
}

func (Booking) GetJoinQuery() string {
	return fmt.Sprintf("LEFT JOIN %s ON %s.%s = %s.%s",
		roomModel.TableName, roomModel.TableName, roomModel.FieldID, TableName, FieldRoomID)
}

// Owner returns the user id or an empty string for manual bookings.
func (b Booking) Owner() string {
	if b.UserID == nil {
		return ""
	}

	return *b.UserID
}
