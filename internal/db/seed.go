package db

import (
	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/pkg/logger"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedProduct struct {
	name, nameAr string
	price        string
	salePrice    string
	stock        int
	featured     bool
}

type seedCategory struct {
	category model.Category
	products []seedProduct
}

var demoCatalog = []seedCategory{
	{
		category: model.Category{Name: "Figures", NameAr: "مجسمات", Slug: "figures"},
		products: []seedProduct{
			{"Naruto Uzumaki Figure", "مجسم ناروتو أوزوماكي", "249.00", "199.00", 12, true},
			{"Levi Ackerman Figure", "مجسم ليفاي أكرمان", "289.00", "", 6, true},
			{"Gojo Satoru Figure", "مجسم غوجو ساتورو", "319.00", "", 3, false},
		},
	},
	{
		category: model.Category{Name: "Apparel", NameAr: "ملابس", Slug: "apparel"},
		products: []seedProduct{
			{"Akatsuki Hoodie", "هودي أكاتسوكي", "159.00", "129.00", 25, true},
			{"Survey Corps Jacket", "جاكيت فيلق الاستطلاع", "199.00", "", 10, false},
		},
	},
	{
		category: model.Category{Name: "Manga", NameAr: "مانجا", Slug: "manga"},
		products: []seedProduct{
			{"One Piece Vol. 1", "ون بيس المجلد 1", "45.00", "", 40, false},
			{"Demon Slayer Box Set", "مجموعة قاتل الشياطين", "399.00", "349.00", 4, true},
		},
	},
	{
		category: model.Category{Name: "Accessories", NameAr: "إكسسوارات", Slug: "accessories"},
		products: []seedProduct{
			{"Sharingan Necklace", "قلادة الشارينغان", "59.00", "", 30, false},
			{"Straw Hat Keychain", "ميدالية قبعة القش", "25.00", "19.00", 60, false},
		},
	},
}

// Seed loads the demo catalog. It does nothing when categories already exist.
func Seed(database *gorm.DB) error {
	logger.Info("Seeding initial data...")

	var count int64
	if err := database.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Catalog already seeded, skipping...", map[string]interface{}{
			"existing_categories": count,
		})
		return nil
	}

	totalProducts := 0
	err := database.Transaction(func(tx *gorm.DB) error {
		for _, sc := range demoCatalog {
			category := sc.category
			category.ProductCount = len(sc.products)
			if err := tx.Create(&category).Error; err != nil {
				return err
			}
			for _, sp := range sc.products {
				product := model.Product{
					CategoryID:    category.ID,
					Name:          sp.name,
					NameAr:        sp.nameAr,
					Description:   sp.name,
					DescriptionAr: sp.nameAr,
					Price:         decimal.RequireFromString(sp.price),
					Stock:         sp.stock,
					Featured:      sp.featured,
					Images:        pq.StringArray{},
				}
				if sp.salePrice != "" {
					product.SalePrice = decimal.NewNullDecimal(decimal.RequireFromString(sp.salePrice))
				}
				if err := tx.Create(&product).Error; err != nil {
					return err
				}
				totalProducts++
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to seed catalog", err)
		return err
	}

	logger.Info("Initial data seeded successfully", map[string]interface{}{
		"categories": len(demoCatalog),
		"products":   totalProducts,
	})
	return nil
}
