package dataset

import (
	"math"

	"github.com/roach88/ecomkpi/internal/rng"
)

// GenerateOrders creates one order per purchasing session, in the order
// given. purchasing must come from GenerateEvents (or the degenerate
// fallback); it is never re-derived here.
func GenerateOrders(src *rng.Source, p Params, sessions []Session, purchasing []int64) []Order {
	byID := make(map[int64]Session, len(sessions))
	for _, s := range sessions {
		byID[s.ID] = s
	}

	o := p.Orders
	days := p.DayCount()
	orders := make([]Order, 0, len(purchasing))
	for i, sessionID := range purchasing {
		session := byID[sessionID]

		orderDate := p.StartDate.AddDays(src.IntRange(0, days-1))
		subtotal := rng.Round(src.ClampedNormal(o.Subtotal), 2)
		discount := rng.Round(src.ClampedNormal(o.Discount), 2)
		shipping := rng.Round(src.ClampedNormal(o.ShippingFee), 2)
		total := rng.Round(rng.Clamp(subtotal-discount+shipping, o.TotalMin, o.TotalMax), 2)
		status := statusFor(src.Float64(), o)

		var delivered *Date
		if status == StatusDelivered {
			d := orderDate.AddDays(deliveryDays(src, o.DeliveryDays))
			delivered = &d
		}

		orders = append(orders, Order{
			ID:            int64(i + 1),
			CustomerID:    session.CustomerID,
			SessionID:     sessionID,
			OrderDate:     orderDate,
			Subtotal:      subtotal,
			Discount:      discount,
			ShippingFee:   shipping,
			TotalAmount:   total,
			Status:        status,
			DeliveredDate: delivered,
		})
	}
	return orders
}

func statusFor(roll float64, o OrderParams) OrderStatus {
	switch {
	case roll < o.CanceledBelow:
		return StatusCanceled
	case roll < o.RefundedBelow:
		return StatusRefunded
	default:
		return StatusDelivered
	}
}

// deliveryDays draws a whole, positive number of days. Validation keeps
// n.Min >= 1.
func deliveryDays(src *rng.Source, n rng.Noise) int {
	return int(math.Round(src.ClampedNormal(n)))
}
