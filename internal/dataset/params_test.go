package dataset

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParamsValid(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())
	assert.Equal(t, 366, DefaultParams().DayCount()) // 2024 is a leap year
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Params)
		want   string
	}{
		{"zero customers", func(p *Params) { p.Customers = 0 }, "customers must be greater than 0"},
		{"zero sessions", func(p *Params) { p.Sessions = 0 }, "sessions must be greater than 0"},
		{"zero seed", func(p *Params) { p.Seed = 0 }, "seed is required"},
		{"negative probability", func(p *Params) { p.Funnel.Checkout = -0.1 }, "funnel.checkout must be at least 0"},
		{"probability above one", func(p *Params) { p.Funnel.Purchase = 1.5 }, "funnel.purchase must be at most 1"},
		{"inverted dates", func(p *Params) { p.EndDate = NewDate(2023, 12, 31) }, "end_date 2023-12-31 is before start_date 2024-01-01"},
		{"missing dates", func(p *Params) { p.StartDate = Date{} }, "start_date and end_date are required"},
		{"no regions", func(p *Params) { p.Regions = nil }, "regions needs at least 1 entries"},
		{"blank channel", func(p *Params) { p.Channels = []string{"organic", ""} }, "channels[1] is required"},
		{"weights length", func(p *Params) { p.ChannelWeights = []float64{1, 2} }, "channel_weights has 2 entries, want 5"},
		{"weights sum", func(p *Params) { p.RegionWeights = make([]float64, 10) }, "region_weights must sum to a positive value"},
		{"status thresholds", func(p *Params) { p.Orders.CanceledBelow = 0.5 }, "orders.canceled_below 0.5 exceeds orders.refunded_below 0.06"},
		{"inverted clamp", func(p *Params) { p.Orders.Subtotal.Min = 500 }, "orders.subtotal min 500 exceeds max 400"},
		{"negative stddev", func(p *Params) { p.Orders.Discount.StdDev = -1 }, "orders.discount.stddev must be at least 0"},
		{"negative money", func(p *Params) { p.Orders.ShippingFee.Min = -1 }, "monetary ranges must be non-negative"},
		{"zero delivery days", func(p *Params) { p.Orders.DeliveryDays.Min = 0 }, "orders.delivery_days.min must be at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)

			err := p.Validate()
			require.Error(t, err)
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Contains(t, cfgErr.Problems, tt.want)
		})
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	p := DefaultParams()
	p.Customers = 0
	p.Sessions = -1

	var cfgErr *ConfigError
	require.ErrorAs(t, p.Validate(), &cfgErr)
	assert.Len(t, cfgErr.Problems, 2)
	assert.Contains(t, cfgErr.Error(), "invalid configuration")
}

func TestGenerateRejectsInvalidParams(t *testing.T) {
	p := DefaultParams()
	p.Customers = 0
	d, err := Generate(p)
	assert.Nil(t, d)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestDateText(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalText([]byte("2024-02-29")))
	assert.Equal(t, "2024-02-29", d.String())
	assert.Equal(t, "2024-03-01", d.AddDays(1).String())
	assert.Equal(t, 2, d.DaysUntil(NewDate(2024, 3, 2)))

	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", string(b))

	assert.Error(t, d.UnmarshalText([]byte("02/29/2024")))
}

func TestDaysUntil_CenturiesWide(t *testing.T) {
	start := NewDate(1700, time.January, 1)
	end := NewDate(2200, time.January, 1)

	want := 0
	for y := 1700; y < 2200; y++ {
		want += 365
		if y%4 == 0 && (y%100 != 0 || y%400 == 0) {
			want++
		}
	}

	assert.Equal(t, want, start.DaysUntil(end))
	assert.Equal(t, -want, end.DaysUntil(start))
	assert.Equal(t, end, start.AddDays(want))
}
