package domain

import "time"

// Event types
const (
	EventTypeOrderConfirmed     = "order.confirmed"
	EventTypeOrderSentForSeller = "order.sent_for_seller"
)

// Aggregate types
const (
	AggregateTypeOrder = "order"
)

// Notification templates
const (
	TemplateOrderConfirmed     = "order-confirmed"
	TemplateOrderSentForSeller = "order-sent-for-seller"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// Notification is a message addressed to one participant of an order.
type Notification struct {
	Data      any
	EventType string
	Template  string
	OrderID   string
	Recipient string
	Email     string
}

// NotificationLine is one itemized line in a notification.
type NotificationLine struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Discount string `json:"discount"`
	Quantity int    `json:"qty"`
}

// OrderConfirmedData is the buyer's order confirmation payload.
type OrderConfirmedData struct {
	Name              string             `json:"name"`
	TrackingToken     string             `json:"tracking_id"`
	EstimatedDelivery string             `json:"estimated_delivery"`
	Subtotal          string             `json:"subtotal"`
	PlatformFee       string             `json:"platform_fee"`
	DeliveryFee       string             `json:"delivery_fee"`
	Total             string             `json:"total"`
	Address           []string           `json:"address"`
	Lines             []NotificationLine `json:"items"`
}

// SellerOrderData tells a seller which of their items were bought.
type SellerOrderData struct {
	Name               string             `json:"name"`
	EstimatedDropoff   string             `json:"estimated_dropoff"`
	PlatformFee        string             `json:"platform_fee"`
	PlatformPercentage string             `json:"platform_percentage"`
	SellerCut          string             `json:"seller_cut"`
	Subtotal           string             `json:"subtotal"`
	Total              string             `json:"total"`
	Lines              []NotificationLine `json:"items"`
}
