package model

import "time"

// Product is the catalog entity this core reads by SKU and writes
// PrimaryImageID on. The rest of its attributes belong to the catalog
// CRUD surface, which is external.
type Product struct {
	ID uint64 `gorm:"primaryKey"`

	SKU  string `gorm:"column:sku;size:64;uniqueIndex;not null"`
	Name string `gorm:"column:name;size:255;not null"`

	PrimaryImageID *uint64 `gorm:"column:primary_image_id"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the database table name.
func (Product) TableName() string {
	return "product"
}
