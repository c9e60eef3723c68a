package domain

import "time"

type Product struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Price       int64     `bson:"price" json:"price"`
	Category    string    `bson:"category,omitempty" json:"category,omitempty"`
	Image       string    `bson:"image,omitempty" json:"image,omitempty"`
	InStock     bool      `bson:"in_stock" json:"inStock"`
	Featured    bool      `bson:"featured" json:"featured"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}
