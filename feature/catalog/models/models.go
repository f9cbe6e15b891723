package models

import "time"

// Item is a catalog entry a scanned or typed code can resolve to.
//
// The five identifier fields mirror what the upstream catalog service
// exposes; any of them may be empty for a given item.
type Item struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SystemID    string    `gorm:"column:system_id;size:64;uniqueIndex" json:"system_id"`
	Name        string    `gorm:"size:255" json:"name"`
	UPC         string    `gorm:"column:upc;size:64" json:"upc"`
	EAN         string    `gorm:"column:ean;size:64" json:"ean"`
	CustomSKU   string    `gorm:"column:custom_sku;size:64" json:"custom_sku"`
	ManufactSKU string    `gorm:"column:manufact_sku;size:64" json:"manufact_sku"`
	PriceCents  int       `gorm:"column:price_cents" json:"price_cents"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName provides the explicit table binding for GORM.
func (Item) TableName() string {
	return "catalog_items"
}
