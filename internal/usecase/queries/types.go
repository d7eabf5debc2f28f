package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)

type ProductView struct {
	ID                uuid.UUID `json:"id"`
	SKU               string    `json:"sku"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	PriceCents        int64     `json:"price_cents"`
	ImageURL          string    `json:"image_url"`
	Status            string    `json:"status"`
	AvailableQuantity int       `json:"available_quantity"`
	InStock           bool      `json:"in_stock"`
	LowStock          bool      `json:"low_stock"`
	AllowBackorder    bool      `json:"allow_backorder"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type ProductListItem struct {
	ID                uuid.UUID `json:"id"`
	SKU               string    `json:"sku"`
	Title             string    `json:"title"`
	PriceCents        int64     `json:"price_cents"`
	ImageURL          string    `json:"image_url"`
	Status            string    `json:"status"`
	InStock           bool      `json:"in_stock"`
	AvailableQuantity int       `json:"available_quantity"`
	CreatedAt         time.Time `json:"created_at"`
}

type CartLineView struct {
	ProductID         uuid.UUID `json:"product_id"`
	SKU               string    `json:"sku"`
	Title             string    `json:"title"`
	ImageURL          string    `json:"image_url"`
	PriceCents        int64     `json:"price_cents"`
	CurrentPriceCents int64     `json:"current_price_cents"`
	PriceChanged      bool      `json:"price_changed"`
	Quantity          int       `json:"quantity"`
	SubtotalCents     int64     `json:"subtotal_cents"`
}

type CartView struct {
	ID            uuid.UUID      `json:"id"`
	Lines         []CartLineView `json:"lines"`
	SubtotalCents int64          `json:"subtotal_cents"`
	TaxCents      int64          `json:"tax_cents"`
	ShippingCents int64          `json:"shipping_cents"`
	DiscountCents int64          `json:"discount_cents"`
	TotalCents    int64          `json:"total_cents"`
	Currency      string         `json:"currency"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type OrderItemView struct {
	ProductID     uuid.UUID `json:"product_id"`
	SKU           string    `json:"sku"`
	Title         string    `json:"title"`
	ImageURL      string    `json:"image_url"`
	PriceCents    int64     `json:"price_cents"`
	Quantity      int       `json:"quantity"`
	SubtotalCents int64     `json:"subtotal_cents"`
}

type OrderView struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Number          string          `json:"number"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"payment_status"`
	Items           []OrderItemView `json:"items"`
	ShippingAddress []byte          `json:"shipping_address"`
	BillingAddress  []byte          `json:"billing_address"`
	PaymentMethod   string          `json:"payment_method"`
	SubtotalCents   int64           `json:"subtotal_cents"`
	TaxCents        int64           `json:"tax_cents"`
	ShippingCents   int64           `json:"shipping_cents"`
	DiscountCents   int64           `json:"discount_cents"`
	TotalCents      int64           `json:"total_cents"`
	Currency        string          `json:"currency"`
	CustomerNotes   *string         `json:"customer_notes,omitempty"`
	ShippedAt       *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type OrderListItem struct {
	ID         uuid.UUID `json:"id"`
	Number     string    `json:"number"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"total_cents"`
	Currency   string    `json:"currency"`
	ItemCount  int       `json:"item_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type LowStockItem struct {
	ID                uuid.UUID `json:"id"`
	SKU               string    `json:"sku"`
	Title             string    `json:"title"`
	Quantity          int       `json:"quantity"`
	ReservedQuantity  int       `json:"reserved_quantity"`
	LowStockThreshold int       `json:"low_stock_threshold"`
}

type InventoryLogView struct {
	ID               uuid.UUID  `json:"id"`
	ProductID        uuid.UUID  `json:"product_id"`
	Type             string     `json:"type"`
	Quantity         int        `json:"quantity"`
	PreviousQuantity int        `json:"previous_quantity"`
	NewQuantity      int        `json:"new_quantity"`
	Reason           *string    `json:"reason,omitempty"`
	OrderID          *uuid.UUID `json:"order_id,omitempty"`
	UserID           *uuid.UUID `json:"user_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type UserView struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
