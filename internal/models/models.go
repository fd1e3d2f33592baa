// Package models holds the persisted catalog entities.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaseTime carries the audit timestamps shared by every entity.
type BaseTime struct {
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
	LastModifiedAt time.Time `gorm:"column:last_modified_at;autoUpdateTime" json:"-"`
}

// Brand is a clothing label.
type Brand struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	BaseTime
}

func (Brand) TableName() string { return "brands" }

// Category is a kind of item (tops, sneakers, ...).
type Category struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	BaseTime
}

func (Category) TableName() string { return "categories" }

// Product is one brand's item within a category.
type Product struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Price      decimal.Decimal `gorm:"type:numeric(19,2);not null" json:"price"`
	BrandID    int64           `gorm:"not null;index" json:"-"`
	CategoryID int64           `gorm:"not null;index" json:"-"`
	Brand      Brand           `gorm:"foreignKey:BrandID;constraint:OnDelete:CASCADE" json:"brand"`
	Category   Category        `gorm:"foreignKey:CategoryID" json:"category"`
	BaseTime
}

func (Product) TableName() string { return "products" }

// CategoryMinPrice is the lowest price found in one category.
type CategoryMinPrice struct {
	CategoryID int64
	MinPrice   decimal.Decimal
}

// BrandCategoryPrice is the cheapest price a brand offers in a category.
type BrandCategoryPrice struct {
	BrandID      int64
	BrandName    string
	CategoryID   int64
	CategoryName string
	Price        decimal.Decimal
}
