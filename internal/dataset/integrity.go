package dataset

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/ecomkpi/internal/rng"
)

// maxReportedViolations caps the messages kept in an IntegrityError.
const maxReportedViolations = 20

// IntegrityError lists the invariant violations found in a dataset.
type IntegrityError struct {
	Violations []string
	Total      int
}

func (e *IntegrityError) Error() string {
	msg := strings.Join(e.Violations, "; ")
	if e.Total > len(e.Violations) {
		msg += fmt.Sprintf(" (and %d more)", e.Total-len(e.Violations))
	}
	return fmt.Sprintf("dataset integrity: %d violation(s): %s", e.Total, msg)
}

type violations struct {
	list  []string
	total int
}

func (v *violations) addf(format string, args ...any) {
	v.total++
	if len(v.list) < maxReportedViolations {
		v.list = append(v.list, fmt.Sprintf(format, args...))
	}
}

// Check verifies the referential, funnel, financial and delivery invariants
// of d against its own Params.
func Check(d *Dataset) error {
	v := &violations{}
	p := d.Params

	customerIDs := make(map[int64]bool, len(d.Customers))
	for i, c := range d.Customers {
		if c.ID != int64(i+1) {
			v.addf("customer at position %d has id %d", i, c.ID)
		}
		customerIDs[c.ID] = true
		if c.SignupDate.Before(p.StartDate) || p.EndDate.Before(c.SignupDate) {
			v.addf("customer %d signup_date %s outside window", c.ID, c.SignupDate)
		}
	}

	sessionOwner := make(map[int64]int64, len(d.Sessions))
	for i, s := range d.Sessions {
		if s.ID != int64(i+1) {
			v.addf("session at position %d has id %d", i, s.ID)
		}
		if !customerIDs[s.CustomerID] {
			v.addf("session %d references unknown customer %d", s.ID, s.CustomerID)
		}
		sessionOwner[s.ID] = s.CustomerID
	}

	steps := make(map[int64]map[EventType]int, len(d.Sessions))
	for i, e := range d.Events {
		if e.ID != int64(i+1) {
			v.addf("event at position %d has id %d", i, e.ID)
		}
		if _, ok := sessionOwner[e.SessionID]; !ok {
			v.addf("event %d references unknown session %d", e.ID, e.SessionID)
			continue
		}
		if steps[e.SessionID] == nil {
			steps[e.SessionID] = make(map[EventType]int, len(FunnelSteps))
		}
		steps[e.SessionID][e.Type]++
	}

	purchased := make(map[int64]bool)
	for _, s := range d.Sessions {
		seen := steps[s.ID]
		if seen[EventView] != 1 {
			v.addf("session %d has %d view events", s.ID, seen[EventView])
		}
		gap := false
		for _, step := range FunnelSteps {
			n := seen[step]
			if n > 1 {
				v.addf("session %d has %d %s events", s.ID, n, step)
			}
			if n > 0 && gap {
				v.addf("session %d has %s without the preceding step", s.ID, step)
			}
			if n == 0 {
				gap = true
			}
		}
		if seen[EventPurchase] > 0 {
			purchased[s.ID] = true
		}
	}

	ordered := make(map[int64]int64, len(d.Orders))
	o := p.Orders
	for i, ord := range d.Orders {
		if ord.ID != int64(i+1) {
			v.addf("order at position %d has id %d", i, ord.ID)
		}
		if prev, dup := ordered[ord.SessionID]; dup {
			v.addf("orders %d and %d share session %d", prev, ord.ID, ord.SessionID)
		}
		ordered[ord.SessionID] = ord.ID
		if !purchased[ord.SessionID] {
			v.addf("order %d session %d has no purchase event", ord.ID, ord.SessionID)
		}
		if owner, ok := sessionOwner[ord.SessionID]; ok && owner != ord.CustomerID {
			v.addf("order %d customer %d differs from session owner %d", ord.ID, ord.CustomerID, owner)
		}
		if ord.OrderDate.Before(p.StartDate) || p.EndDate.Before(ord.OrderDate) {
			v.addf("order %d order_date %s outside window", ord.ID, ord.OrderDate)
		}
		checkRange(v, ord.ID, "subtotal", ord.Subtotal, o.Subtotal.Min, o.Subtotal.Max)
		checkRange(v, ord.ID, "discount", ord.Discount, o.Discount.Min, o.Discount.Max)
		checkRange(v, ord.ID, "shipping_fee", ord.ShippingFee, o.ShippingFee.Min, o.ShippingFee.Max)
		checkRange(v, ord.ID, "total_amount", ord.TotalAmount, o.TotalMin, o.TotalMax)
		want := rng.Round(rng.Clamp(ord.Subtotal-ord.Discount+ord.ShippingFee, o.TotalMin, o.TotalMax), 2)
		if math.Abs(want-ord.TotalAmount) > 0.005 {
			v.addf("order %d total_amount %.2f, want %.2f", ord.ID, ord.TotalAmount, want)
		}

		switch ord.Status {
		case StatusDelivered:
			if ord.DeliveredDate == nil {
				v.addf("delivered order %d has no delivered_date", ord.ID)
			} else if !ord.OrderDate.Before(*ord.DeliveredDate) {
				v.addf("order %d delivered_date %s not after order_date %s", ord.ID, ord.DeliveredDate, ord.OrderDate)
			}
		case StatusCanceled, StatusRefunded:
			if ord.DeliveredDate != nil {
				v.addf("%s order %d has delivered_date", ord.Status, ord.ID)
			}
		default:
			v.addf("order %d has unknown status %q", ord.ID, ord.Status)
		}
	}
	for sessionID := range purchased {
		if _, ok := ordered[sessionID]; !ok {
			v.addf("purchasing session %d has no order", sessionID)
		}
	}

	if v.total == 0 {
		return nil
	}
	return &IntegrityError{Violations: v.list, Total: v.total}
}

func checkRange(v *violations, orderID int64, field string, value, lo, hi float64) {
	// Rounding to cents may step just past a bound with more precision.
	const slack = 0.005
	if value < lo-slack || value > hi+slack {
		v.addf("order %d %s %.2f outside [%g, %g]", orderID, field, value, lo, hi)
	}
}
