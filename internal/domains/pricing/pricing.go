// Package pricing computes stay charges for the customer, manual and quote flows.
package pricing

import (
	"math"
	"strings"
	"time"

	"resort/config"
	"resort/shared/constant"
	"resort/shared/failure"
)

type MealPlan string

const (
	MealPlanEP  MealPlan = "EP"
	MealPlanCP  MealPlan = "CP"
	MealPlanMAP MealPlan = "MAP"
)

type MealTier string

const (
	MealTierPremium  MealTier = "PREMIUM"
	MealTierStandard MealTier = "STANDARD"
	MealTierNone     MealTier = "NONE"
)

const (
	MinRooms = 1
	MaxRooms = 10

	minAmount     = 1
	minorUnits    = 100
	MinOrderPaise = 100

	day = 24 * time.Hour
)

var (
	ErrCheckoutBeforeCheckin = failure.BadRequestFromString("Check-out must be after check-in")
	ErrCheckinInPast         = failure.BadRequestFromString("Check-in date cannot be in the past")
	ErrAmountTooSmall        = failure.BadRequestFromString("Amount must be at least 1")
)

var premiumKeywords = []string{"lotus", "presidential"}
var standardKeywords = []string{"deluxe", "edge"}

// Rates holds the per-unit charges. Zero values fall back to the defaults.
type Rates struct {
	GSTPercent      float64
	ChildRate       int
	ExtraAdultRate  int
	CPRate          int
	MAPPremiumRate  int
	MAPStandardRate int
}

func DefaultRates() Rates {
	return Rates{
		GSTPercent:      5,
		ChildRate:       1200,
		ExtraAdultRate:  1500,
		CPRate:          500,
		MAPPremiumRate:  2000,
		MAPStandardRate: 1000,
	}
}

func RatesFromConfig(cfg *config.Config) Rates {
	rates := DefaultRates()
	p := cfg.Pricing

	if p.GSTPercent > 0 {
		rates.GSTPercent = p.GSTPercent
	}

	if p.ChildRate > 0 {
		rates.ChildRate = p.ChildRate
	}

	if p.ExtraAdultRate > 0 {
		rates.ExtraAdultRate = p.ExtraAdultRate
	}

	if p.CPRate > 0 {
		rates.CPRate = p.CPRate
	}

	if p.MAPPremiumRate > 0 {
		rates.MAPPremiumRate = p.MAPPremiumRate
	}

	if p.MAPStandardRate > 0 {
		rates.MAPStandardRate = p.MAPStandardRate
	}

	return rates
}

func (r Rates) MAPRate(tier MealTier) int {
	switch tier {
	case MealTierPremium:
		return r.MAPPremiumRate
	case MealTierStandard:
		return r.MAPStandardRate
	default:
		return 0
	}
}

type DatePlan struct {
	Date time.Time
	Plan MealPlan
}

type Input struct {
	PricePerNight int
	CheckIn       time.Time
	CheckOut      time.Time
	Rooms         int
	Adults        int
	Children      int
	ExtraAdults   int
	MealPlans     []DatePlan
	MealTier      MealTier
	Discount      float64
}

type Breakdown struct {
	Nights           int
	Rooms            int
	Guests           int
	Base             float64
	ChildCharge      float64
	ExtraAdultCharge float64
	CPNights         int
	CPAmount         float64
	MAPNights        int
	MAPRate          int
	MAPAmount        float64
	Subtotal         float64
	Discount         float64
	BaseAmount       float64
	GSTPercent       float64
	GSTAmount        float64
	Amount           float64
	MealPlanByDate   []DatePlan
}

// Calculate prices a stay. Input.Discount must already be clamped by the promo validator.
func Calculate(rates Rates, in Input) (Breakdown, error) {
	nights, err := Nights(in.CheckIn, in.CheckOut)
	if err != nil {
		return Breakdown{}, err
	}

	rooms := ClampRooms(in.Rooms)
	guests := in.Adults + in.ExtraAdults + in.Children
	plans := ResolveMealPlans(in.CheckIn, nights, in.MealPlans)

	res := Breakdown{
		Nights:         nights,
		Rooms:          rooms,
		Guests:         guests,
		MAPRate:        rates.MAPRate(in.MealTier),
		GSTPercent:     rates.GSTPercent,
		MealPlanByDate: plans,
	}

	for _, plan := range plans {
		switch plan.Plan {
		case MealPlanCP:
			res.CPNights++
		case MealPlanMAP:
			res.MAPNights++
		}
	}

	res.Base = float64(in.PricePerNight * nights * rooms)
	res.ChildCharge = float64(rates.ChildRate * in.Children * nights)
	res.ExtraAdultCharge = float64(rates.ExtraAdultRate * in.ExtraAdults * nights)
	res.CPAmount = float64(rates.CPRate * guests * res.CPNights)
	res.MAPAmount = float64(res.MAPRate * guests * res.MAPNights)
	res.Subtotal = Round2(res.Base + res.ChildCharge + res.ExtraAdultCharge + res.CPAmount + res.MAPAmount)

	res.Discount = Round2(math.Min(math.Max(in.Discount, 0), res.Subtotal))
	res.BaseAmount = Round2(res.Subtotal - res.Discount)
	res.GSTAmount = Round2(res.BaseAmount * rates.GSTPercent / 100)
	res.Amount = Round2(res.BaseAmount + res.GSTAmount)

	if res.Amount < minAmount {
		return res, ErrAmountTooSmall
	}

	return res, nil
}

// Nights counts started days between check-in and check-out.
func Nights(checkIn, checkOut time.Time) (int, error) {
	diff := checkOut.Sub(checkIn)
	if diff <= 0 {
		return 0, ErrCheckoutBeforeCheckin
	}

	return int(math.Ceil(float64(diff) / float64(day))), nil
}

func ClampRooms(rooms int) int {
	return min(max(rooms, MinRooms), MaxRooms)
}

// ValidateStayDates compares at day granularity in the location of now.
func ValidateStayDates(checkIn, checkOut, now time.Time) error {
	today := truncateDay(now)
	if truncateDay(checkIn.In(now.Location())).Before(today) {
		return ErrCheckinInPast
	}

	if !checkOut.After(checkIn) {
		return ErrCheckoutBeforeCheckin
	}

	return nil
}

// ResolveMealPlans returns one plan per night starting at checkIn. Unknown nights are EP,
// entries outside the stay are dropped and later entries for a date win.
func ResolveMealPlans(checkIn time.Time, nights int, plans []DatePlan) []DatePlan {
	byDate := make(map[string]MealPlan, len(plans))

	for _, plan := range plans {
		switch plan.Plan {
		case MealPlanCP, MealPlanMAP, MealPlanEP:
			byDate[plan.Date.Format(constant.DayFormat)] = plan.Plan
		}
	}

	res := make([]DatePlan, nights)
	start := truncateDay(checkIn)

	for i := range nights {
		date := start.AddDate(0, 0, i)

		plan, ok := byDate[date.Format(constant.DayFormat)]
		if !ok {
			plan = MealPlanEP
		}

		res[i] = DatePlan{Date: date, Plan: plan}
	}

	return res
}

// ResolveTier prefers the explicit tier and falls back to keywords in the room title.
func ResolveTier(explicit, title string) MealTier {
	switch MealTier(strings.ToUpper(strings.TrimSpace(explicit))) {
	case MealTierPremium:
		return MealTierPremium
	case MealTierStandard:
		return MealTierStandard
	case MealTierNone:
		return MealTierNone
	}

	return TierFromTitle(title)
}

func TierFromTitle(title string) MealTier {
	lower := strings.ToLower(title)

	for _, keyword := range premiumKeywords {
		if strings.Contains(lower, keyword) {
			return MealTierPremium
		}
	}

	for _, keyword := range standardKeywords {
		if strings.Contains(lower, keyword) {
			return MealTierStandard
		}
	}

	return MealTierNone
}

func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func AmountInSmallestUnit(amount float64) int64 {
	return int64(math.Round(amount * minorUnits))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
