package model

const ProductCollection = "product"

type Product struct {
	Name        string   `json:"name" bson:"name" binding:"required"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	Price       *float64 `json:"price" bson:"price" binding:"required"`
	Category    string   `json:"category" bson:"category" binding:"required"`
	InStock     *bool    `json:"in_stock,omitempty" bson:"in_stock"`
}
