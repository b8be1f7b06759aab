package model

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products. ProductCount is denormalized and only ever moved
// by an atomic increment inside the transaction that creates, deletes or
// re-categorizes a product.
type Category struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	NameAr       string    `gorm:"not null" json:"name_ar"`
	Slug         string    `gorm:"uniqueIndex;not null" json:"slug"`
	ImageURL     string    `json:"image_url"`
	ProductCount int       `gorm:"not null;default:0" json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

type Product struct {
	ID            uint                `gorm:"primarykey" json:"id"`
	CategoryID    uint                `gorm:"not null;index" json:"category_id"`
	Name          string              `gorm:"not null" json:"name"`
	NameAr        string              `gorm:"not null" json:"name_ar"`
	Description   string              `gorm:"type:text" json:"description"`
	DescriptionAr string              `gorm:"type:text" json:"description_ar"`
	Price         decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"price"`
	SalePrice     decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"sale_price"`
	Stock         int                 `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	Images        pq.StringArray      `gorm:"type:text" json:"images"`
	Featured      bool                `gorm:"default:false;index" json:"featured"`
	Rating        float64             `gorm:"not null;default:0" json:"rating"`
	ReviewsCount  int                 `gorm:"not null;default:0" json:"reviews_count"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	DeletedAt     gorm.DeletedAt      `gorm:"index" json:"-"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// UnitPrice is the sale price when one is set, else the list price.
func (p *Product) UnitPrice() decimal.Decimal {
	if p.SalePrice.Valid {
		return p.SalePrice.Decimal
	}
	return p.Price
}

// PrimaryImage returns the first image URL, or "".
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

type Review struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Rating    int       `gorm:"not null;check:chk_reviews_rating,rating BETWEEN 1 AND 5" json:"rating"`
	Title     string    `gorm:"not null" json:"title"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}
