package model

import (
	"resort/shared/model"

	"github.com/lib/pq"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID            = "id"
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldPricePerNight = "price_per_night"
	FieldPerson        = "person"
	FieldInventory     = "inventory"
	FieldMealTier      = "meal_tier"
	FieldImages        = "images"
	FieldAmenities     = "amenities"
	FieldActive        = "active"
)

type Room struct {
	ID            string         `db:"id"`
	Title         string         `db:"title"`
	Description   string         `db:"description"`
	PricePerNight int            `db:"price_per_night"`
	Person        int            `db:"person"`
	Inventory     int            `db:"inventory"`
	MealTier      string         `db:"meal_tier"`
	Images        pq.StringArray `db:"images"`
	Amenities     pq.StringArray `db:"amenities"`
	Active        bool           `db:"active"`
	model.Metadata
}
