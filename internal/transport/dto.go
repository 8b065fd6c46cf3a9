package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shivgems/internal/models"
)

type RegisterRequest struct {
	Name     string `json:"name"     validate:"max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type CreateProductRequest struct {
	Name        string           `json:"name"        validate:"required"`
	Description string           `json:"description" validate:"required"`
	Price       *decimal.Decimal `json:"price"       validate:"required"`
	Image       string           `json:"image"       validate:"required"`
	Stock       *int             `json:"stock"       validate:"required"`
}

type PatchProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Image       *string          `json:"image"`
	Stock       *int             `json:"stock"`
}

type ProductResponse struct {
	Source string          `json:"source"`
	Data   *models.Product `json:"data"`
}

type ProductListResponse struct {
	Source string           `json:"source"`
	Data   []models.Product `json:"data"`
	Meta   any              `json:"meta"`
}

type SearchResponse struct {
	Total int64            `json:"total"`
	Data  []models.Product `json:"data"`
}

type AddToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type CartSummary struct {
	Items     []models.CartItem `json:"items"`
	ItemCount int               `json:"itemCount"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	Shipping  decimal.Decimal   `json:"shipping"`
	Tax       decimal.Decimal   `json:"tax"`
	Total     decimal.Decimal   `json:"total"`
}

type CreateOrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest without Items orders the caller's cart.
type CreateOrderRequest struct {
	Items           []CreateOrderItem `json:"items"`
	ShippingAddress string            `json:"shippingAddress" validate:"max=500"`
	TotalAmount     *decimal.Decimal  `json:"totalAmount"`
}

type CreateOrderResponse struct {
	Message string        `json:"message"`
	OrderID string        `json:"orderId"`
	Order   *models.Order `json:"order"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
