package models

import "time"

// Sale: one order line. Product name and prices are copied in at sale time so
// later product edits never change historical invoices. ProductID is kept for
// stock adjustment only and is deliberately not a foreign key.
type Sale struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	SoldAt          time.Time `gorm:"index;not null" json:"sold_at"`
	ProductID       uint      `gorm:"index;not null" json:"product_id"`
	ProductName     string    `gorm:"size:100;not null" json:"product_name"`
	Quantity        int       `gorm:"not null" json:"quantity"`
	UnitSell        float64   `gorm:"not null" json:"unit_sell"`
	UnitCost        float64   `gorm:"not null" json:"unit_cost"`
	Total           float64   `gorm:"not null" json:"total"`      // unit_sell * quantity
	CostTotal       float64   `gorm:"not null" json:"cost_total"` // unit_cost * quantity
	NetProfit       float64   `gorm:"not null" json:"net_profit"` // total - cost_total
	CustomerName    string    `gorm:"size:100" json:"customer_name"`
	CustomerPhone   string    `gorm:"size:30" json:"customer_phone"`
	CustomerAddress string    `gorm:"size:255" json:"customer_address"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
