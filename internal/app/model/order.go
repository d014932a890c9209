package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusAccepted  OrderStatus = "ACCEPTED"
	OrderStatusPicked    OrderStatus = "PICKED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:   "Order Placed",
	OrderStatusAccepted:  "Order Confirmed",
	OrderStatusPicked:    "Out for Delivery",
	OrderStatusDelivered: "Delivered",
}

// Label is the customer-facing wording for the status
func (s OrderStatus) Label() string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

type Order struct {
	ID        uuid.UUID       `gorm:"type:uuid;primarykey" json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"userId"`
	Total     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total"`
	Status    OrderStatus     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`

	User     *User           `gorm:"foreignKey:UserID" json:"-"`
	Items    []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Tracking []OrderTracking `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"tracking"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primarykey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"orderId"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"productId"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// OrderTracking is one step in an order's delivery history
type OrderTracking struct {
	ID        uuid.UUID   `gorm:"type:uuid;primarykey" json:"id"`
	OrderID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"orderId"`
	RiderID   *string     `json:"riderId"`
	GPSLat    *float64    `json:"gpsLat"`
	GPSLng    *float64    `json:"gpsLng"`
	Status    OrderStatus `gorm:"type:varchar(20);not null" json:"status"`
	Timestamp time.Time   `gorm:"not null" json:"timestamp"`
}

func (OrderTracking) TableName() string {
	return "order_tracking"
}

func (t *OrderTracking) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}
	return nil
}
