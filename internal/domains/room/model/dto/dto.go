package dto

import (
	"mime/multipart"
	"time"

	"resort/internal/domains/pricing"
	"resort/internal/domains/room/model"
	"resort/shared"
	gDto "resort/shared/dto"
	gModel "resort/shared/model"
	"resort/shared/timezone"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type CreateRoomRequest struct {
	Title         string   `json:"title"           validate:"required,max=150"`
	Description   string   `json:"description"     validate:"omitempty,max=5000"`
	PricePerNight int      `json:"price_per_night" validate:"required,min=1"`
	Person        int      `json:"person"          validate:"required,min=1,max=20"`
	Inventory     int      `json:"inventory"       validate:"omitempty,min=1"`
	MealTier      string   `json:"meal_tier"       validate:"omitempty,oneof=PREMIUM STANDARD NONE"`
	Amenities     []string `json:"amenities"       validate:"omitempty,dive,max=100"`
	Active        *bool    `json:"active"          validate:"omitempty"`
}

func (c *CreateRoomRequest) ToModel(user string) model.Room {
	active := true
	if c.Active != nil {
		active = *c.Active
	}

	inventory := c.Inventory
	if inventory == 0 {
		inventory = 1
	}

	amenities := c.Amenities
	if amenities == nil {
		amenities = []string{}
	}

	return model.Room{
		ID:            uuid.NewString(),
		Title:         c.Title,
		Description:   c.Description,
		PricePerNight: c.PricePerNight,
		Person:        c.Person,
		Inventory:     inventory,
		MealTier:      c.MealTier,
		Images:        pq.StringArray{},
		Amenities:     pq.StringArray(amenities),
		Active:        active,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateRoomRequest struct {
	Title         string         `db:"title"           json:"title"           validate:"omitempty,max=150"`
	Description   string         `db:"description"     json:"description"     validate:"omitempty,max=5000"`
	PricePerNight *int           `db:"price_per_night" json:"price_per_night" validate:"omitempty,min=1"`
	Person        *int           `db:"person"          json:"person"          validate:"omitempty,min=1,max=20"`
	Inventory     *int           `db:"inventory"       json:"inventory"       validate:"omitempty,min=1"`
	MealTier      *string        `db:"meal_tier"       json:"meal_tier"       validate:"omitempty,oneof=PREMIUM STANDARD NONE"`
	Amenities     pq.StringArray `db:"amenities"       json:"amenities"       validate:"omitempty,dive,max=100"`
	Active        *bool          `db:"active"          json:"active"          validate:"omitempty"`
}

type UploadImagesRequest struct {
	Images []*multipart.FileHeader `validate:"required,min=1,max=10,dive,mimetypes=image/png image/jpg image/jpeg,maxfilesize=2"`
}

type RemoveImageRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type AvailabilityRequest struct {
	CheckIn  string `json:"check_in"  validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
}

type RoomResponse struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	PricePerNight int      `json:"price_per_night"`
	Person        int      `json:"person"`
	Inventory     int      `json:"inventory"`
	MealTier      string   `json:"meal_tier"`
	Images        []string `json:"images"`
	Amenities     []string `json:"amenities"`
	Active        bool     `json:"active"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Title = model.Title
	r.Description = model.Description
	r.PricePerNight = model.PricePerNight
	r.Person = model.Person
	r.Inventory = model.Inventory
	r.MealTier = string(pricing.ResolveTier(model.MealTier, model.Title))
	r.Images = append([]string{}, model.Images...)
	r.Amenities = append([]string{}, model.Amenities...)
	r.Active = model.Active
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}

type AvailabilityResponse struct {
	RoomID    string    `json:"room_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Inventory int       `json:"inventory"`
	Booked    int       `json:"booked"`
	Available int       `json:"available"`
}
