package dataset

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestGeneratedDatasetInvariants checks the integrity invariants over
// arbitrary seeds, sizes and funnel probabilities.
func TestGeneratedDatasetInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25
	properties := gopter.NewProperties(parameters)

	properties.Property("generated datasets satisfy every invariant", prop.ForAll(
		func(seed int64, customers, sessions int, cart, checkout, purchase float64) bool {
			p := DefaultParams()
			p.Seed = seed
			p.Customers = customers
			p.Sessions = sessions
			p.Funnel = FunnelParams{AddToCart: cart, Checkout: checkout, Purchase: purchase}

			d, err := Generate(p)
			if err != nil {
				return false
			}
			return Check(d) == nil && len(d.Orders) == len(d.Purchasing) && len(d.Orders) > 0
		},
		gen.Int64Range(1, 1<<40),
		gen.IntRange(1, 30),
		gen.IntRange(1, 200),
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 1),
	))

	properties.Property("same seed reproduces the same orders", prop.ForAll(
		func(seed int64) bool {
			p := DefaultParams()
			p.Seed = seed
			p.Customers = 20
			p.Sessions = 150

			a, errA := Generate(p)
			b, errB := Generate(p)
			if errA != nil || errB != nil || len(a.Orders) != len(b.Orders) {
				return false
			}
			for i := range a.Orders {
				x, y := a.Orders[i], b.Orders[i]
				if x.SessionID != y.SessionID || x.TotalAmount != y.TotalAmount || x.Status != y.Status {
					return false
				}
			}
			return true
		},
		gen.Int64Range(1, 1<<40),
	))

	properties.TestingRun(t)
}
