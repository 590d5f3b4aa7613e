package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleShop  = "shop"
	RoleAdmin = "admin"
)

const (
	ShopPending   = "pending"
	ShopApproved  = "approved"
	ShopRejected  = "rejected"
	ShopSuspended = "suspended"
)

const (
	OrderProcessing = "Processing"
	OrderPaid       = "Paid"
	OrderShipped    = "Shipped"
	OrderDelivered  = "Delivered"
	OrderCancelled  = "Cancelled"
)

const (
	PaymentPending   = "Pending"
	PaymentCompleted = "Completed"
	PaymentFailed    = "Failed"
	PaymentRefunded  = "Refunded"
)

const (
	PaymentMethodCOD    = "COD"
	PaymentMethodOnline = "Online"
)

const (
	DisputeNone     = "none"
	DisputeRaised   = "raised"
	DisputeResolved = "resolved"
	DisputeClosed   = "closed"
)

const (
	RefundNone      = "none"
	RefundRequested = "requested"
	RefundApproved  = "approved"
	RefundRejected  = "rejected"
	RefundProcessed = "processed"
)

type ShopDetails struct {
	ShopName     string `json:"shop_name,omitempty"`
	OwnerName    string `json:"owner_name,omitempty"`
	BusinessType string `json:"business_type,omitempty"`
	GSTNumber    string `json:"gst_number,omitempty"`
	AddressLine1 string `json:"address_line1,omitempty"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country,omitempty"`
	Website      string `json:"website,omitempty"`
}

type User struct {
	ID                 uint        `gorm:"primaryKey;autoIncrement"       json:"id"`
	Name               string      `gorm:"not null"                       json:"name"`
	Email              string      `gorm:"unique;not null"                json:"email"`
	Phone              string      `json:"phone"`
	PasswordHash       string      `gorm:"not null"                       json:"-"`
	Role               string      `gorm:"not null;default:user"          json:"role"`
	IsBlocked          bool        `gorm:"default:false"                  json:"is_blocked"`
	ShopApprovalStatus string      `gorm:"default:approved"               json:"shop_approval_status"`
	ShopDetails        ShopDetails `gorm:"embedded;embeddedPrefix:shop_"  json:"shop_details"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"          json:"id"`
	Token     string `gorm:"unique;not null"     json:"token"`
	UserID    uint   `gorm:"index;not null"      json:"user_id"`
	ExpiresAt int64  `gorm:"not null"            json:"expires_at"`
	Revoked   bool   `gorm:"default:false"       json:"revoked"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	ShopID      *uint     `gorm:"index"                     json:"shop_id"`
	Name        string    `gorm:"not null"                  json:"name"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null"                  json:"price"`
	Stock       uint      `json:"stock"`
	Category    string    `gorm:"index"                     json:"category"`
	Rating      float64   `gorm:"default:0"                 json:"rating"`
	NumReviews  uint      `gorm:"default:0"                 json:"num_reviews"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey"      json:"id"`
	ProductID uint      `gorm:"index;not null"  json:"product_id"`
	UserID    uint      `gorm:"not null"        json:"user_id"`
	Rating    uint      `gorm:"not null"        json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"                  json:"id"`
	UserID    uint `gorm:"index;not null"              json:"user_id"`
	ProductID uint `gorm:"not null"                    json:"product_id"`
	Quantity  uint `gorm:"default:1;check:quantity>0"  json:"quantity"`
}

type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Dispute and Refund live inside the order row. A zero Status means the
// sub-record was never opened.
type Dispute struct {
	Status      string     `gorm:"default:none"  json:"status"`
	Reason      string     `json:"reason,omitempty"`
	Description string     `json:"description,omitempty"`
	RaisedAt    *time.Time `json:"raised_at,omitempty"`
	Resolution  string     `json:"resolution,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

type Refund struct {
	Status        string     `gorm:"default:none"  json:"status"`
	Amount        float64    `json:"amount,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	RequestedAt   *time.Time `json:"requested_at,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	TransactionID string     `json:"transaction_id,omitempty"`
}

type Order struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"           json:"id"`
	UserID          uint            `gorm:"index;not null"                     json:"user_id"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID"                 json:"items"`
	TotalPrice      float64         `gorm:"not null"                           json:"total_price"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_"  json:"shipping_address"`
	PaymentMethod   string          `gorm:"not null;default:COD"               json:"payment_method"`
	PaymentStatus   string          `gorm:"not null;default:Pending"           json:"payment_status"`
	OrderStatus     string          `gorm:"not null;default:Processing"        json:"order_status"`
	Dispute         Dispute         `gorm:"embedded;embeddedPrefix:dispute_"   json:"dispute"`
	Refund          Refund          `gorm:"embedded;embeddedPrefix:refund_"    json:"refund"`
	GatewayOrderID  string          `gorm:"index"                              json:"gateway_order_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// UnitPrice is the product price at order time, so the order total stays
// reproducible after the catalog changes.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey"                  json:"id"`
	OrderID   uint    `gorm:"index;not null"              json:"order_id"`
	ProductID uint    `gorm:"not null"                    json:"product_id"`
	Quantity  uint    `gorm:"default:1;check:quantity>0"  json:"quantity"`
	UnitPrice float64 `gorm:"not null"                    json:"unit_price"`
}
