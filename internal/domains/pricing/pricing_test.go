package pricing_test

import (
	"testing"
	"time"

	"resort/config"
	"resort/internal/domains/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(day int) time.Time {
	return time.Date(2026, time.March, day, 0, 0, 0, 0, time.UTC)
}

func TestCalculate(t *testing.T) {
	rates := pricing.DefaultRates()

	tests := []struct {
		name    string
		input   pricing.Input
		want    pricing.Breakdown
		wantErr error
	}{
		{
			name: "room with one child for two nights",
			input: pricing.Input{
				PricePerNight: 4500,
				CheckIn:       date(10),
				CheckOut:      date(12),
				Rooms:         1,
				Adults:        2,
				Children:      1,
			},
			want: pricing.Breakdown{
				Nights:      2,
				Rooms:       1,
				Guests:      3,
				Base:        9000,
				ChildCharge: 2400,
				Subtotal:    11400,
				BaseAmount:  11400,
				GSTPercent:  5,
				GSTAmount:   570,
				Amount:      11970,
			},
		},
		{
			name: "extra adults and meal plans on a premium room",
			input: pricing.Input{
				PricePerNight: 6000,
				CheckIn:       date(10),
				CheckOut:      date(13),
				Rooms:         2,
				Adults:        2,
				ExtraAdults:   1,
				MealTier:      pricing.MealTierPremium,
				MealPlans: []pricing.DatePlan{
					{Date: date(10), Plan: pricing.MealPlanCP},
					{Date: date(11), Plan: pricing.MealPlanMAP},
					{Date: date(20), Plan: pricing.MealPlanMAP},
				},
			},
			want: pricing.Breakdown{
				Nights:           3,
				Rooms:            2,
				Guests:           3,
				Base:             36000,
				ExtraAdultCharge: 4500,
				CPNights:         1,
				CPAmount:         1500,
				MAPNights:        1,
				MAPRate:          2000,
				MAPAmount:        6000,
				Subtotal:         48000,
				BaseAmount:       48000,
				GSTPercent:       5,
				GSTAmount:        2400,
				Amount:           50400,
			},
		},
		{
			name: "discount is applied before gst",
			input: pricing.Input{
				PricePerNight: 1000,
				CheckIn:       date(10),
				CheckOut:      date(11),
				Discount:      100,
			},
			want: pricing.Breakdown{
				Nights:     1,
				Rooms:      1,
				Base:       1000,
				Subtotal:   1000,
				Discount:   100,
				BaseAmount: 900,
				GSTPercent: 5,
				GSTAmount:  45,
				Amount:     945,
			},
		},
		{
			name: "rooms above the cap are clamped",
			input: pricing.Input{
				PricePerNight: 100,
				CheckIn:       date(10),
				CheckOut:      date(11),
				Rooms:         25,
			},
			want: pricing.Breakdown{
				Nights:     1,
				Rooms:      10,
				Base:       1000,
				Subtotal:   1000,
				BaseAmount: 1000,
				GSTPercent: 5,
				GSTAmount:  50,
				Amount:     1050,
			},
		},
		{
			name: "check-out before check-in",
			input: pricing.Input{
				PricePerNight: 100,
				CheckIn:       date(11),
				CheckOut:      date(11),
			},
			wantErr: pricing.ErrCheckoutBeforeCheckin,
		},
		{
			name: "full discount leaves nothing to charge",
			input: pricing.Input{
				PricePerNight: 1000,
				CheckIn:       date(10),
				CheckOut:      date(11),
				Discount:      5000,
			},
			wantErr: pricing.ErrAmountTooSmall,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pricing.Calculate(rates, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			got.MealPlanByDate = nil
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculate_BaseAndGSTProperty(t *testing.T) {
	rates := pricing.DefaultRates()

	for _, price := range []int{1, 999, 2500, 4500, 12345} {
		for nights := 1; nights <= 5; nights++ {
			for rooms := pricing.MinRooms; rooms <= pricing.MaxRooms; rooms++ {
				got, err := pricing.Calculate(rates, pricing.Input{
					PricePerNight: price,
					CheckIn:       date(1),
					CheckOut:      date(1 + nights),
					Rooms:         rooms,
				})
				require.NoError(t, err)

				assert.Equal(t, float64(price*nights*rooms), got.Base)
				assert.InDelta(t, pricing.Round2(got.BaseAmount*1.05), got.Amount, 0.011)
				assert.Equal(t, got.Amount, pricing.Round2(got.BaseAmount+got.GSTAmount))
			}
		}
	}
}

func TestNights(t *testing.T) {
	nights, err := pricing.Nights(date(1), date(1).Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, nights)

	nights, err = pricing.Nights(date(1), date(4))
	require.NoError(t, err)
	assert.Equal(t, 3, nights)

	_, err = pricing.Nights(date(4), date(1))
	assert.ErrorIs(t, err, pricing.ErrCheckoutBeforeCheckin)
}

func TestClampRooms(t *testing.T) {
	assert.Equal(t, 1, pricing.ClampRooms(0))
	assert.Equal(t, 1, pricing.ClampRooms(-3))
	assert.Equal(t, 4, pricing.ClampRooms(4))
	assert.Equal(t, 10, pricing.ClampRooms(11))
}

func TestValidateStayDates(t *testing.T) {
	now := time.Date(2026, time.March, 10, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		wantErr  error
	}{
		{name: "today is allowed", checkIn: date(10), checkOut: date(11)},
		{name: "future stay", checkIn: date(20), checkOut: date(22)},
		{name: "past check-in", checkIn: date(9), checkOut: date(11), wantErr: pricing.ErrCheckinInPast},
		{name: "same day check-out", checkIn: date(12), checkOut: date(12), wantErr: pricing.ErrCheckoutBeforeCheckin},
		{name: "check-out before check-in", checkIn: date(12), checkOut: date(11), wantErr: pricing.ErrCheckoutBeforeCheckin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pricing.ValidateStayDates(tt.checkIn, tt.checkOut, now)
			if tt.wantErr == nil {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolveMealPlans(t *testing.T) {
	plans := pricing.ResolveMealPlans(date(10), 3, []pricing.DatePlan{
		{Date: date(11), Plan: pricing.MealPlanCP},
		{Date: date(11), Plan: pricing.MealPlanMAP},
		{Date: date(13), Plan: pricing.MealPlanCP},
		{Date: date(9), Plan: pricing.MealPlanCP},
		{Date: date(12), Plan: "BUFFET"},
	})

	require.Len(t, plans, 3)
	assert.Equal(t, pricing.MealPlanEP, plans[0].Plan)
	assert.Equal(t, pricing.MealPlanMAP, plans[1].Plan)
	assert.Equal(t, pricing.MealPlanEP, plans[2].Plan)
	assert.Equal(t, date(12), plans[2].Date)
}

func TestResolveTier(t *testing.T) {
	tests := []struct {
		explicit string
		title    string
		want     pricing.MealTier
	}{
		{title: "Lotus Suite", want: pricing.MealTierPremium},
		{title: "The PRESIDENTIAL villa", want: pricing.MealTierPremium},
		{title: "Deluxe Room", want: pricing.MealTierStandard},
		{title: "Valley Edge Cottage", want: pricing.MealTierStandard},
		{title: "Tent", want: pricing.MealTierNone},
		{explicit: "standard", title: "Lotus Suite", want: pricing.MealTierStandard},
		{explicit: "NONE", title: "Lotus Suite", want: pricing.MealTierNone},
		{explicit: "unknown", title: "Deluxe Room", want: pricing.MealTierStandard},
	}

	for _, tt := range tests {
		t.Run(tt.explicit+"/"+tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, pricing.ResolveTier(tt.explicit, tt.title))
		})
	}
}

func TestRatesFromConfig(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, pricing.DefaultRates(), pricing.RatesFromConfig(cfg))

	cfg.Pricing.GSTPercent = 12
	cfg.Pricing.CPRate = 700

	rates := pricing.RatesFromConfig(cfg)
	assert.Equal(t, 12.0, rates.GSTPercent)
	assert.Equal(t, 700, rates.CPRate)
	assert.Equal(t, 1200, rates.ChildRate)
}

func TestAmountInSmallestUnit(t *testing.T) {
	assert.Equal(t, int64(1197000), pricing.AmountInSmallestUnit(11970))
	assert.Equal(t, int64(1050), pricing.AmountInSmallestUnit(10.5))
	assert.Equal(t, int64(99), pricing.AmountInSmallestUnit(0.99))
}
