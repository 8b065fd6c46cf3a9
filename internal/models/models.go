package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

const (
	OrderSourceCart  = "cart"
	OrderSourceItems = "items"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"      json:"id"`
	Name         string    `gorm:"not null;default:''"       json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"      json:"email"`
	PasswordHash string    `gorm:"not null"                  json:"-"`
	Role         string    `gorm:"not null;default:customer" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"              json:"id"`
	Name        string          `gorm:"not null"                          json:"name"`
	Description string          `gorm:"not null"                          json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"       json:"price"`
	Image       string          `gorm:"not null"                          json:"image"`
	Stock       int             `gorm:"not null;default:0;check:stock>=0" json:"stock"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                         json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_product;not null" json:"userId"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_product;not null" json:"productId"`
	Quantity  int       `gorm:"not null;default:1;check:quantity>0"          json:"quantity"`
	Product   *Product  `gorm:"foreignKey:ProductID"                         json:"product,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"           json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;index;not null"       json:"userId"`
	User            *User           `gorm:"foreignKey:UserID"              json:"user,omitempty"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID"             json:"items"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null"    json:"totalAmount"`
	ShippingAddress string          `gorm:"not null;default:''"            json:"shippingAddress"`
	Status          OrderStatus     `gorm:"type:varchar(16);not null;index" json:"status"`
	Source          string          `gorm:"type:varchar(8);not null"       json:"source"`
	CreatedAt       time.Time       `gorm:"index"                          json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"                json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"            json:"orderId"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"                  json:"productId"`
	Name      string          `gorm:"not null"                            json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"         json:"price"`
	Quantity  int             `gorm:"not null;check:quantity>0"           json:"quantity"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type RevokedToken struct {
	JTI       string    `gorm:"primaryKey;size:64" json:"jti"`
	UserID    uuid.UUID `gorm:"type:uuid;index"    json:"userId"`
	ExpiresAt time.Time `gorm:"index;not null"     json:"expiresAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string {
	return "cart_items"
}

func All() []any {
	return []any{&User{}, &Product{}, &CartItem{}, &Order{}, &OrderItem{}, &RevokedToken{}}
}
