package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	"github.com/kaanagas/kaanagas-backend/pkg/enums"
)

// CreateOrderItemInput is one requested line on a new order.
type CreateOrderItemInput struct {
	ProductID              uuid.UUID
	Quantity               int
	IsRefill               bool
	CustomerCylinderSerial *string
}

// CreateOrderInput carries everything needed to place an order.
type CreateOrderInput struct {
	CustomerID uuid.UUID
	VendorID   uuid.UUID
	OrderType  string
	Items      []CreateOrderItemInput

	DeliveryAddress       *string
	DeliveryInstructions  *string
	DeliveryLatitude      *float64
	DeliveryLongitude     *float64
	RequestedDeliveryTime *time.Time
	SpecialInstructions   *string
	IsEmergency           bool

	ActorRole string
}

// VendorActionInput identifies an order a vendor is acting on.
type VendorActionInput struct {
	OrderID     uuid.UUID
	VendorID    uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   string
	Notes       *string

	// EstimatedMinutes is only honoured on confirmation, where it
	// re-stamps the order's estimated delivery time.
	EstimatedMinutes *int
}

// AssignRiderInput pairs an order with a rider.
type AssignRiderInput struct {
	OrderID     uuid.UUID
	VendorID    uuid.UUID
	RiderID     uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   string
}

// CancelOrderInput carries a cancellation request.
type CancelOrderInput struct {
	OrderID     uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   string
	Reason      string
}

// ListFilters describe the inputs supported by order lists.
type ListFilters struct {
	Status    *enums.OrderStatus
	OrderType *enums.OrderType
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Cursor    string
}

// OrderSummary is the aggregated row returned by order lists.
type OrderSummary struct {
	ID            uuid.UUID                `json:"id"`
	OrderNumber   string                   `json:"orderNumber"`
	Status        enums.OrderStatus        `json:"status"`
	OrderType     enums.OrderType          `json:"orderType"`
	TotalAmount   decimal.Decimal          `json:"totalAmount"`
	PaymentStatus enums.OrderPaymentStatus `json:"paymentStatus"`
	TotalItems    int                      `json:"totalItems"`
	IsEmergency   bool                     `json:"isEmergency"`
	CreatedAt     time.Time                `json:"createdAt"`
}

// OrderList wraps paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

// EstimateItemInput is one line of a price quote request.
type EstimateItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	IsRefill  bool
}

// EstimateInput asks for a quote without persisting anything.
type EstimateInput struct {
	VendorID          uuid.UUID
	OrderType         string
	Items             []EstimateItemInput
	DeliveryLatitude  *float64
	DeliveryLongitude *float64
}

// EstimateLine is the priced form of one requested item.
type EstimateLine struct {
	ProductID  uuid.UUID       `json:"productId"`
	Quantity   int             `json:"quantity"`
	IsRefill   bool            `json:"isRefill"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	InStock    bool            `json:"inStock"`
}

// Estimate is the quote returned before an order is placed.
type Estimate struct {
	Lines            []EstimateLine  `json:"lines"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	DeliveryFee      decimal.Decimal `json:"deliveryFee"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	DistanceKM       *float64        `json:"distanceKm,omitempty"`
	CanDeliver       bool            `json:"canDeliver"`
	MeetsMinimum     bool            `json:"meetsMinimum"`
	EstimatedMinutes int             `json:"estimatedMinutes"`
}

// AdminOrderStats aggregates platform-wide order activity for a window.
type AdminOrderStats struct {
	Days           int              `json:"days"`
	TotalOrders    int64            `json:"totalOrders"`
	Completed      int64            `json:"completed"`
	Pending        int64            `json:"pending"`
	Cancelled      int64            `json:"cancelled"`
	Revenue        decimal.Decimal  `json:"revenue"`
	CountsByStatus map[string]int64 `json:"countsByStatus"`
}

// VendorOrderStats summarises a vendor's order pipeline by status.
type VendorOrderStats struct {
	Counts map[string]int64 `json:"counts"`
}

// TrackingView is the customer-facing order progress.
type TrackingView struct {
	Order   *models.Order          `json:"order"`
	History []models.OrderTracking `json:"history"`
}
