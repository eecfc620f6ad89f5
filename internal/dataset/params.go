package dataset

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/ecomkpi/internal/rng"
)

// Params holds every knob that shapes a generated dataset. Two runs with equal
// Params produce identical datasets.
type Params struct {
	Seed      int64 `yaml:"seed" json:"seed" validate:"required"`
	Customers int   `yaml:"customers" json:"customers" validate:"gt=0"`
	Sessions  int   `yaml:"sessions" json:"sessions" validate:"gt=0"`

	// StartDate and EndDate bound signup and order dates, inclusive.
	StartDate Date `yaml:"start_date" json:"start_date"`
	EndDate   Date `yaml:"end_date" json:"end_date"`

	Regions        []string  `yaml:"regions" json:"regions" validate:"min=1,dive,required"`
	RegionWeights  []float64 `yaml:"region_weights,omitempty" json:"region_weights,omitempty" validate:"dive,gte=0"`
	Channels       []string  `yaml:"channels" json:"channels" validate:"min=1,dive,required"`
	ChannelWeights []float64 `yaml:"channel_weights,omitempty" json:"channel_weights,omitempty" validate:"dive,gte=0"`

	Funnel FunnelParams `yaml:"funnel" json:"funnel"`
	Orders OrderParams  `yaml:"orders" json:"orders"`
}

// FunnelParams are the per-step probabilities, each conditioned on the
// previous step having happened.
type FunnelParams struct {
	AddToCart float64 `yaml:"add_to_cart" json:"add_to_cart" validate:"gte=0,lte=1"`
	Checkout  float64 `yaml:"checkout" json:"checkout" validate:"gte=0,lte=1"`
	Purchase  float64 `yaml:"purchase" json:"purchase" validate:"gte=0,lte=1"`
}

// OrderParams shape the monetary, status and delivery draws of an order.
type OrderParams struct {
	Subtotal    rng.Noise `yaml:"subtotal" json:"subtotal"`
	Discount    rng.Noise `yaml:"discount" json:"discount"`
	ShippingFee rng.Noise `yaml:"shipping_fee" json:"shipping_fee"`
	TotalMin    float64   `yaml:"total_min" json:"total_min"`
	TotalMax    float64   `yaml:"total_max" json:"total_max"`

	// A status roll below CanceledBelow cancels the order, below
	// RefundedBelow refunds it, anything else is delivered.
	CanceledBelow float64 `yaml:"canceled_below" json:"canceled_below" validate:"gte=0,lte=1"`
	RefundedBelow float64 `yaml:"refunded_below" json:"refunded_below" validate:"gte=0,lte=1"`

	DeliveryDays rng.Noise `yaml:"delivery_days" json:"delivery_days"`
}

// DefaultParams returns the stock configuration: 500 customers, 12000
// sessions over calendar 2024.
func DefaultParams() Params {
	return Params{
		Seed:      42,
		Customers: 500,
		Sessions:  12000,
		StartDate: NewDate(2024, 1, 1),
		EndDate:   NewDate(2024, 12, 31),
		Regions:   []string{"CA", "NY", "TX", "FL", "GA", "NC", "WA", "IL", "PA", "MA"},
		Channels:  []string{"organic", "paid_search", "paid_social", "referral", "email"},
		Funnel: FunnelParams{
			AddToCart: 0.25,
			Checkout:  0.60,
			Purchase:  0.75,
		},
		Orders: OrderParams{
			Subtotal:      rng.Noise{Mean: 65, StdDev: 25, Min: 5, Max: 400},
			Discount:      rng.Noise{Mean: 3, StdDev: 6, Min: 0, Max: 40},
			ShippingFee:   rng.Noise{Mean: 6, StdDev: 3, Min: 0, Max: 25},
			TotalMin:      5,
			TotalMax:      500,
			CanceledBelow: 0.03,
			RefundedBelow: 0.06,
			DeliveryDays:  rng.Noise{Mean: 5, StdDev: 2, Min: 1, Max: 20},
		},
	}
}

// DayCount returns the number of days in the inclusive date window.
func (p Params) DayCount() int {
	return p.StartDate.DaysUntil(p.EndDate) + 1
}

// ConfigError reports invalid generation parameters. It is returned before
// any value is drawn.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", strings.Join(e.Problems, "; "))
}

var validate = newValidator()

// newValidator reports fields by their yaml names so messages match the
// config file the user wrote.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks p and returns a *ConfigError listing every problem found.
func (p Params) Validate() error {
	var problems []string

	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				problems = append(problems, describeFieldError(fe))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}

	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		problems = append(problems, "start_date and end_date are required")
	} else if p.EndDate.Before(p.StartDate) {
		problems = append(problems, fmt.Sprintf("end_date %s is before start_date %s", p.EndDate, p.StartDate))
	}

	if len(p.RegionWeights) > 0 {
		problems = append(problems, checkWeights("region_weights", p.RegionWeights, len(p.Regions))...)
	}
	if len(p.ChannelWeights) > 0 {
		problems = append(problems, checkWeights("channel_weights", p.ChannelWeights, len(p.Channels))...)
	}

	o := p.Orders
	if o.CanceledBelow > o.RefundedBelow {
		problems = append(problems, fmt.Sprintf("orders.canceled_below %.4g exceeds orders.refunded_below %.4g", o.CanceledBelow, o.RefundedBelow))
	}
	for name, n := range map[string]rng.Noise{
		"orders.subtotal":      o.Subtotal,
		"orders.discount":      o.Discount,
		"orders.shipping_fee":  o.ShippingFee,
		"orders.delivery_days": o.DeliveryDays,
	} {
		if n.Min > n.Max {
			problems = append(problems, fmt.Sprintf("%s min %.4g exceeds max %.4g", name, n.Min, n.Max))
		}
	}
	if o.Subtotal.Min < 0 || o.Discount.Min < 0 || o.ShippingFee.Min < 0 || o.TotalMin < 0 {
		problems = append(problems, "monetary ranges must be non-negative")
	}
	if o.TotalMin > o.TotalMax {
		problems = append(problems, fmt.Sprintf("orders.total_min %.4g exceeds orders.total_max %.4g", o.TotalMin, o.TotalMax))
	}
	if o.DeliveryDays.Min < 1 {
		problems = append(problems, "orders.delivery_days.min must be at least 1")
	}

	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return &ConfigError{Problems: problems}
}

func checkWeights(name string, weights []float64, n int) []string {
	var problems []string
	if len(weights) != n {
		problems = append(problems, fmt.Sprintf("%s has %d entries, want %d", name, len(weights), n))
	}
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		problems = append(problems, fmt.Sprintf("%s must sum to a positive value", name))
	}
	return problems
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
