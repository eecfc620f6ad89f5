package dataset

import (
	"github.com/roach88/ecomkpi/internal/rng"
	"github.com/roach88/ecomkpi/internal/tabular"
)

// Dataset is the full generated table collection of one run.
type Dataset struct {
	Params    Params
	Customers []Customer
	Sessions  []Session
	Events    []Event
	Orders    []Order

	// Purchasing holds the session ids that reached purchase, in session
	// order. Orders[i].SessionID == Purchasing[i].
	Purchasing []int64

	// Degenerate is set when no session purchased and the lowest session id
	// was promoted.
	Degenerate bool
}

// Stats summarizes a dataset's row counts.
type Stats struct {
	Customers          int  `json:"customers"`
	Sessions           int  `json:"sessions"`
	Events             int  `json:"events"`
	Orders             int  `json:"orders"`
	PurchasingSessions int  `json:"purchasing_sessions"`
	Degenerate         bool `json:"degenerate"`
}

// Generate validates p and builds the dataset. A *ConfigError is returned
// before anything is drawn.
func Generate(p Params) (*Dataset, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	src := rng.New(p.Seed)
	customers := GenerateCustomers(src, p)
	sessions := GenerateSessions(src, p, customers)
	events, purchasing := GenerateEvents(src, p, sessions)

	degenerate := false
	if len(purchasing) == 0 {
		lowest := sessions[0].ID
		events = completeFunnel(events, lowest)
		purchasing = []int64{lowest}
		degenerate = true
	}

	orders := GenerateOrders(src, p, sessions, purchasing)

	return &Dataset{
		Params:     p,
		Customers:  customers,
		Sessions:   sessions,
		Events:     events,
		Orders:     orders,
		Purchasing: purchasing,
		Degenerate: degenerate,
	}, nil
}

// Stats returns the row counts of d.
func (d *Dataset) Stats() Stats {
	return Stats{
		Customers:          len(d.Customers),
		Sessions:           len(d.Sessions),
		Events:             len(d.Events),
		Orders:             len(d.Orders),
		PurchasingSessions: len(d.Purchasing),
		Degenerate:         d.Degenerate,
	}
}

// Table names in load order.
const (
	TableCustomers = "customers"
	TableSessions  = "sessions"
	TableEvents    = "events"
	TableOrders    = "orders"
)

// Tables returns the named table collection in load order.
func (d *Dataset) Tables() []tabular.Table {
	return []tabular.Table{
		d.customersTable(),
		d.sessionsTable(),
		d.eventsTable(),
		d.ordersTable(),
	}
}

func (d *Dataset) customersTable() tabular.Table {
	rows := make([][]any, len(d.Customers))
	for i, c := range d.Customers {
		rows[i] = []any{c.ID, c.SignupDate.String(), c.Region, c.AcquisitionChannel}
	}
	return tabular.Table{
		Name: TableCustomers,
		Columns: []tabular.Column{
			{Name: "customer_id", Type: "INTEGER"},
			{Name: "signup_date", Type: "DATE"},
			{Name: "region", Type: "TEXT"},
			{Name: "acquisition_channel", Type: "TEXT"},
		},
		Rows: rows,
	}
}

func (d *Dataset) sessionsTable() tabular.Table {
	rows := make([][]any, len(d.Sessions))
	for i, s := range d.Sessions {
		rows[i] = []any{s.ID, s.CustomerID, s.Channel}
	}
	return tabular.Table{
		Name: TableSessions,
		Columns: []tabular.Column{
			{Name: "session_id", Type: "INTEGER"},
			{Name: "customer_id", Type: "INTEGER"},
			{Name: "channel", Type: "TEXT"},
		},
		Rows: rows,
	}
}

func (d *Dataset) eventsTable() tabular.Table {
	rows := make([][]any, len(d.Events))
	for i, e := range d.Events {
		rows[i] = []any{e.ID, e.SessionID, string(e.Type)}
	}
	return tabular.Table{
		Name: TableEvents,
		Columns: []tabular.Column{
			{Name: "event_id", Type: "INTEGER"},
			{Name: "session_id", Type: "INTEGER"},
			{Name: "event_type", Type: "TEXT"},
		},
		Rows: rows,
	}
}

func (d *Dataset) ordersTable() tabular.Table {
	rows := make([][]any, len(d.Orders))
	for i, o := range d.Orders {
		var delivered any
		if o.DeliveredDate != nil {
			delivered = o.DeliveredDate.String()
		}
		rows[i] = []any{
			o.ID, o.CustomerID, o.SessionID, o.OrderDate.String(),
			o.Subtotal, o.Discount, o.ShippingFee, o.TotalAmount,
			string(o.Status), delivered,
		}
	}
	return tabular.Table{
		Name: TableOrders,
		Columns: []tabular.Column{
			{Name: "order_id", Type: "INTEGER"},
			{Name: "customer_id", Type: "INTEGER"},
			{Name: "session_id", Type: "INTEGER"},
			{Name: "order_date", Type: "DATE"},
			{Name: "subtotal", Type: "REAL"},
			{Name: "discount", Type: "REAL"},
			{Name: "shipping_fee", Type: "REAL"},
			{Name: "total_amount", Type: "REAL"},
			{Name: "status", Type: "TEXT"},
			{Name: "delivered_date", Type: "DATE"},
		},
		Rows: rows,
	}
}
