package model

const OrderCollection = "order"

type Order struct {
	CustomerName    string      `json:"customer_name" bson:"customer_name" binding:"required"`
	CustomerEmail   string      `json:"customer_email" bson:"customer_email" binding:"required"`
	ShippingAddress string      `json:"shipping_address,omitempty" bson:"shipping_address,omitempty"`
	Items           []OrderItem `json:"items" bson:"items" binding:"required,min=1,dive"`
	Total           *float64    `json:"total,omitempty" bson:"total,omitempty"`
}

type OrderItem struct {
	ProductID string `json:"product_id" bson:"product_id" binding:"required"`
	Quantity  *int   `json:"quantity" bson:"quantity" binding:"required"`
}
