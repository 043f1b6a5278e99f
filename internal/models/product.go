package models

import "time"

type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Quantity    int       `gorm:"not null" json:"quantity"` // may go negative: a sale without stock is a backorder
	CostPrice   float64   `gorm:"not null" json:"cost_price"`
	SellPrice   float64   `gorm:"not null" json:"sell_price"`
	ImagePath   string    `gorm:"size:255" json:"image_path"` // path under the image dir, empty when no image
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
