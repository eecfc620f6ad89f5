package dataset

// Customer is one row of the customers table.
type Customer struct {
	ID                 int64
	SignupDate         Date
	Region             string
	AcquisitionChannel string
}

// Session is one row of the sessions table. Channel is drawn per session and
// is independent of the customer's acquisition channel.
type Session struct {
	ID         int64
	CustomerID int64
	Channel    string
}

// EventType is a funnel step.
type EventType string

const (
	EventView      EventType = "view"
	EventAddToCart EventType = "add_to_cart"
	EventCheckout  EventType = "checkout"
	EventPurchase  EventType = "purchase"
)

// FunnelSteps lists the event types in funnel order.
var FunnelSteps = []EventType{EventView, EventAddToCart, EventCheckout, EventPurchase}

// Event is one row of the events table.
type Event struct {
	ID        int64
	SessionID int64
	Type      EventType
}

// OrderStatus is the terminal state of an order.
type OrderStatus string

const (
	StatusDelivered OrderStatus = "delivered"
	StatusCanceled  OrderStatus = "canceled"
	StatusRefunded  OrderStatus = "refunded"
)

// Order is one row of the orders table. DeliveredDate is nil unless Status
// is StatusDelivered.
type Order struct {
	ID            int64
	CustomerID    int64
	SessionID     int64
	OrderDate     Date
	Subtotal      float64
	Discount      float64
	ShippingFee   float64
	TotalAmount   float64
	Status        OrderStatus
	DeliveredDate *Date
}
