package model

import (
	"database/sql/driver"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

type StockStatus string

const (
	StockInStock    StockStatus = "IN_STOCK"
	StockOutOfStock StockStatus = "OUT_OF_STOCK"
)

var (
	ErrInvalidPrice         = errors.New("price must not be negative")
	ErrInvalidDiscountPrice = errors.New("discount price must be below price and not negative")
	ErrInvalidStockStatus   = errors.New("invalid stock status")
)

type Product struct {
	ID            uuid.UUID           `gorm:"type:uuid;primarykey" json:"id"`
	Title         string              `gorm:"not null" json:"title"`
	Slug          string              `gorm:"uniqueIndex;not null" json:"slug"`
	Description   *string             `gorm:"type:text" json:"description"`
	Price         decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"price"`
	DiscountPrice decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"discountPrice"`
	StockStatus   StockStatus         `gorm:"type:varchar(20);not null;default:'IN_STOCK';index" json:"stockStatus"`
	Thumbnail     string              `gorm:"not null" json:"thumbnail"`
	Images        ImageList           `json:"images"`
	CategoryID    uuid.UUID           `gorm:"type:uuid;not null;index" json:"categoryId"`
	IsFlashSale   bool                `gorm:"not null;default:false;index" json:"isFlashSale"`
	CreatedAt     time.Time           `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`

	Category   *Category   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:ProductID" json:"-"`
}

// ImageList is stored as a native text array on postgres and as its array
// literal elsewhere.
type ImageList []string

func (l ImageList) Value() (driver.Value, error) {
	return pq.StringArray(l).Value()
}

func (l *ImageList) Scan(src interface{}) error {
	return (*pq.StringArray)(l).Scan(src)
}

func (ImageList) GormDataType() string {
	return "text"
}

func (ImageList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps discount prices strictly below the listed price
func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.Price.IsNegative() {
		return ErrInvalidPrice
	}
	if p.DiscountPrice.Valid {
		if p.DiscountPrice.Decimal.IsNegative() || p.DiscountPrice.Decimal.GreaterThanOrEqual(p.Price) {
			return ErrInvalidDiscountPrice
		}
	}
	switch p.StockStatus {
	case "":
		p.StockStatus = StockInStock
	case StockInStock, StockOutOfStock:
	default:
		return ErrInvalidStockStatus
	}
	return nil
}

func (p *Product) InStock() bool {
	return p.StockStatus == StockInStock
}

// HasDiscount reports whether a discount price below the listed price is set
func (p *Product) HasDiscount() bool {
	return p.DiscountPrice.Valid && p.DiscountPrice.Decimal.LessThan(p.Price)
}

// EffectivePrice is the unit price charged at checkout
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.HasDiscount() {
		return p.DiscountPrice.Decimal
	}
	return p.Price
}

type DisplayPrice struct {
	CurrentPrice  decimal.Decimal  `json:"currentPrice"`
	OriginalPrice *decimal.Decimal `json:"originalPrice"`
	HasDiscount   bool             `json:"hasDiscount"`
}

func (p *Product) DisplayPrice() DisplayPrice {
	if !p.HasDiscount() {
		return DisplayPrice{CurrentPrice: p.Price}
	}
	original := p.Price
	return DisplayPrice{
		CurrentPrice:  p.DiscountPrice.Decimal,
		OriginalPrice: &original,
		HasDiscount:   true,
	}
}

// DiscountPercentage is the rounded percentage saved, nil without a discount
func (p *Product) DiscountPercentage() *int {
	if !p.HasDiscount() || p.Price.IsZero() {
		return nil
	}
	pct := int(p.Price.Sub(p.DiscountPrice.Decimal).
		Div(p.Price).
		Mul(decimal.NewFromInt(100)).
		Round(0).
		IntPart())
	return &pct
}
