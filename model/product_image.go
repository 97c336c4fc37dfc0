package model

import "time"

// ProductImage links a product to one of its images, with at most one
// primary link per product (§3, enforced transactionally by the
// attachment resolver, not by this row in isolation).
type ProductImage struct {
	ID uint64 `gorm:"primaryKey"`

	ProductID uint64 `gorm:"column:product_id;not null;uniqueIndex:idx_product_image"`
	ImageID   uint64 `gorm:"column:image_id;not null;uniqueIndex:idx_product_image"`

	IsPrimary bool `gorm:"column:is_primary;not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the database table name.
func (ProductImage) TableName() string {
	return "product_image"
}
