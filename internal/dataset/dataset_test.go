package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ecomkpi/internal/rng"
)

func smallParams() Params {
	p := DefaultParams()
	p.Customers = 40
	p.Sessions = 600
	return p
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := Generate(smallParams())
	require.NoError(t, err)
	b, err := Generate(smallParams())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateSeedChangesData(t *testing.T) {
	p := smallParams()
	a, err := Generate(p)
	require.NoError(t, err)
	p.Seed = 43
	b, err := Generate(p)
	require.NoError(t, err)
	assert.NotEqual(t, a.Sessions, b.Sessions)
}

func TestGenerateSatisfiesIntegrity(t *testing.T) {
	d, err := Generate(smallParams())
	require.NoError(t, err)
	require.NoError(t, Check(d))
	assert.False(t, d.Degenerate)
}

func TestDefaultScenario(t *testing.T) {
	p := DefaultParams()
	first, err := Generate(p)
	require.NoError(t, err)
	second, err := Generate(p)
	require.NoError(t, err)

	require.NoError(t, Check(first))
	assert.Len(t, first.Customers, 500)
	assert.Len(t, first.Sessions, 12000)
	assert.Equal(t, len(first.Purchasing), len(first.Orders))
	assert.Less(t, len(first.Orders), 12000)
	assert.Greater(t, len(first.Orders), 0)
	assert.Equal(t, len(first.Orders), len(second.Orders))
	assert.Equal(t, first.Purchasing, second.Purchasing)
}

func TestOrdersFollowPurchasingSessions(t *testing.T) {
	d, err := Generate(smallParams())
	require.NoError(t, err)
	require.Len(t, d.Orders, len(d.Purchasing))
	for i, o := range d.Orders {
		assert.Equal(t, d.Purchasing[i], o.SessionID)
		assert.Equal(t, d.Sessions[o.SessionID-1].CustomerID, o.CustomerID)
	}
}

func TestEventsCertainFunnel(t *testing.T) {
	p := smallParams()
	p.Funnel = FunnelParams{AddToCart: 1, Checkout: 1, Purchase: 1}
	sessions := []Session{{ID: 1, CustomerID: 1, Channel: "email"}, {ID: 2, CustomerID: 1, Channel: "organic"}}

	events, purchasing := GenerateEvents(rng.New(1), p, sessions)

	require.Len(t, events, 8)
	assert.Equal(t, []int64{1, 2}, purchasing)
	for i, e := range events {
		assert.Equal(t, int64(i+1), e.ID)
		assert.Equal(t, FunnelSteps[i%4], e.Type)
	}
}

func TestEventsStopAtFirstFailedStep(t *testing.T) {
	p := smallParams()
	p.Funnel = FunnelParams{AddToCart: 1, Checkout: 0, Purchase: 1}
	sessions := []Session{{ID: 1, CustomerID: 1, Channel: "email"}}

	events, purchasing := GenerateEvents(rng.New(1), p, sessions)

	assert.Equal(t, []Event{
		{ID: 1, SessionID: 1, Type: EventView},
		{ID: 2, SessionID: 1, Type: EventAddToCart},
	}, events)
	assert.Empty(t, purchasing)
}

func TestDegenerateFallbackPromotesLowestSession(t *testing.T) {
	p := smallParams()
	p.Funnel.AddToCart = 0

	d, err := Generate(p)
	require.NoError(t, err)

	assert.True(t, d.Degenerate)
	assert.Equal(t, []int64{1}, d.Purchasing)
	require.Len(t, d.Orders, 1)
	assert.Equal(t, int64(1), d.Orders[0].SessionID)

	// Only views were drawn, so the fallback appends the full tail of the funnel.
	require.Len(t, d.Events, p.Sessions+3)
	tail := d.Events[p.Sessions:]
	assert.Equal(t, []Event{
		{ID: int64(p.Sessions + 1), SessionID: 1, Type: EventAddToCart},
		{ID: int64(p.Sessions + 2), SessionID: 1, Type: EventCheckout},
		{ID: int64(p.Sessions + 3), SessionID: 1, Type: EventPurchase},
	}, tail)

	require.NoError(t, Check(d))
}

func TestCompleteFunnelDrawsNothing(t *testing.T) {
	src := rng.New(5)
	events := []Event{{ID: 1, SessionID: 1, Type: EventView}, {ID: 2, SessionID: 1, Type: EventAddToCart}}
	before := src.Draws()
	out := completeFunnel(events, 1)
	assert.Equal(t, before, src.Draws())
	assert.Equal(t, []Event{
		{ID: 1, SessionID: 1, Type: EventView},
		{ID: 2, SessionID: 1, Type: EventAddToCart},
		{ID: 3, SessionID: 1, Type: EventCheckout},
		{ID: 4, SessionID: 1, Type: EventPurchase},
	}, out)
}

func TestOrderStatusAndDelivery(t *testing.T) {
	d, err := Generate(DefaultParams())
	require.NoError(t, err)

	counts := map[OrderStatus]int{}
	for _, o := range d.Orders {
		counts[o.Status]++
		if o.Status == StatusDelivered {
			require.NotNil(t, o.DeliveredDate)
			days := o.OrderDate.DaysUntil(*o.DeliveredDate)
			assert.GreaterOrEqual(t, days, 1)
			assert.LessOrEqual(t, days, 20)
		} else {
			assert.Nil(t, o.DeliveredDate)
		}
	}
	assert.Greater(t, counts[StatusDelivered], counts[StatusCanceled]+counts[StatusRefunded])
}

func TestStatusThresholds(t *testing.T) {
	o := DefaultParams().Orders
	assert.Equal(t, StatusCanceled, statusFor(0.0, o))
	assert.Equal(t, StatusCanceled, statusFor(0.029, o))
	assert.Equal(t, StatusRefunded, statusFor(0.03, o))
	assert.Equal(t, StatusRefunded, statusFor(0.059, o))
	assert.Equal(t, StatusDelivered, statusFor(0.06, o))
	assert.Equal(t, StatusDelivered, statusFor(0.99, o))
}

func TestWeightedRegions(t *testing.T) {
	p := smallParams()
	p.Regions = []string{"CA", "NY"}
	p.RegionWeights = []float64{0, 1}
	d, err := Generate(p)
	require.NoError(t, err)
	for _, c := range d.Customers {
		assert.Equal(t, "NY", c.Region)
	}
}

func TestTables(t *testing.T) {
	d, err := Generate(smallParams())
	require.NoError(t, err)
	tables := d.Tables()

	var names []string
	for _, tbl := range tables {
		names = append(names, tbl.Name)
		for _, row := range tbl.Rows {
			require.Len(t, row, len(tbl.Columns), "table %s", tbl.Name)
		}
	}
	assert.Equal(t, []string{"customers", "sessions", "events", "orders"}, names)
	assert.Len(t, tables[3].Rows, len(d.Orders))
	assert.Equal(t, "delivered_date", tables[3].Columns[9].Name)
}

func TestStats(t *testing.T) {
	d, err := Generate(smallParams())
	require.NoError(t, err)
	s := d.Stats()
	assert.Equal(t, 40, s.Customers)
	assert.Equal(t, 600, s.Sessions)
	assert.Equal(t, len(d.Events), s.Events)
	assert.Equal(t, s.Orders, s.PurchasingSessions)
}

func TestCheckDetectsViolations(t *testing.T) {
	d, err := Generate(smallParams())
	require.NoError(t, err)
	require.NotEmpty(t, d.Orders)

	d.Sessions[0].CustomerID = 9999
	d.Orders[0].TotalAmount += 10
	d.Orders = append(d.Orders, d.Orders[0])

	err = Check(d)
	var ie *IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.GreaterOrEqual(t, ie.Total, 3)
	assert.Contains(t, err.Error(), "unknown customer 9999")
}
