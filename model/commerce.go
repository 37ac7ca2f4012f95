package model

import "time"

type Product struct {
	Id       string  `json:"id"`
	TenantId string  `json:"tenantId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
}

type CartItem struct {
	ProductId string  `json:"productId"`
	Qty       int     `json:"qty"`
	Price     float64 `json:"price"`
}

type Cart struct {
	TenantId  string     `json:"tenantId"`
	UserPhone string     `json:"userPhone"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type OrderStatus string

const ORDER_PENDING OrderStatus = "pending"
const ORDER_PAID OrderStatus = "paid"

type Order struct {
	Id          string      `json:"id"`
	TenantId    string      `json:"tenantId"`
	UserPhone   string      `json:"userPhone"`
	Items       []CartItem  `json:"items"`
	Total       float64     `json:"total"`
	Currency    string      `json:"currency"`
	Status      OrderStatus `json:"status"`
	PaymentLink string      `json:"paymentLink,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}
