package service

import (
	"errors"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	apperrors "github.com/ikkim/animestore-backend/internal/errors"
	"github.com/ikkim/animestore-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart is the user's cart with totals computed from current product prices.
// Lines whose product has been removed from the catalog are listed but not
// counted.
type Cart struct {
	Items     []model.CartItem `json:"items"`
	ItemCount int              `json:"item_count"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
}

type CartService interface {
	GetUserCart(userID uint) (*Cart, error)
	AddToCart(userID, productID uint, quantity int) (*model.CartItem, error)
	UpdateCartItem(userID, cartItemID uint, quantity int) error
	RemoveFromCart(userID, cartItemID uint) error
	ClearCart(userID uint) error
}

type cartService struct {
	db          *gorm.DB
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(db *gorm.DB, cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) GetUserCart(userID uint) (*Cart, error) {
	logger.Debug("Fetching user cart", map[string]interface{}{
		"user_id": userID,
	})

	items, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		return nil, apperrors.Upstream(err, "cart")
	}

	cart := &Cart{Items: items, Subtotal: decimal.Zero}
	for i := range items {
		if items[i].Product.ID == 0 {
			continue
		}
		cart.ItemCount += items[i].Quantity
		line := items[i].Product.UnitPrice().Mul(decimal.NewFromInt(int64(items[i].Quantity)))
		cart.Subtotal = cart.Subtotal.Add(line)
	}
	return cart, nil
}

func (s *cartService) findProduct(productID uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, apperrors.Upstream(err, "cart")
	}
	return product, nil
}

// AddToCart adds quantity units of the product, merging into an existing line
// for the same product. The merged quantity is checked against stock under the
// product row lock and the whole add is rolled back when it does not fit.
func (s *cartService) AddToCart(userID, productID uint, quantity int) (*model.CartItem, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	product, err := s.findProduct(productID)
	if err != nil {
		return nil, err
	}

	var item *model.CartItem
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		item, err = s.cartRepo.WithTx(tx).AddQuantity(userID, productID, quantity)
		if err != nil {
			return err
		}
		locked, err := s.productRepo.WithTx(tx).FindByIDForUpdate(productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		product = locked
		if product.Stock < item.Quantity {
			logger.Warn("Cannot add to cart: insufficient stock", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
				"requested":  item.Quantity,
				"available":  product.Stock,
			})
			return insufficientStockFor(product.NameAr)
		}
		return nil
	})
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		return nil, apperrors.Upstream(err, "cart")
	}
	item.Product = *product

	logger.Info("Cart item added", map[string]interface{}{
		"cart_item_id": item.ID,
		"quantity":     item.Quantity,
	})
	return item, nil
}

// ownedItem loads a cart line, treating lines of other users as missing.
func (s *cartService) ownedItem(userID, cartItemID uint) (*model.CartItem, error) {
	item, err := s.cartRepo.FindByID(cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, apperrors.Upstream(err, "cart")
	}
	if item.UserID != userID {
		logger.Warn("Cart item access denied: ownership mismatch", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": cartItemID,
		})
		return nil, ErrCartItemNotFound
	}
	return item, nil
}

func (s *cartService) UpdateCartItem(userID, cartItemID uint, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	item, err := s.ownedItem(userID, cartItemID)
	if err != nil {
		return err
	}
	product, err := s.findProduct(item.ProductID)
	if err != nil {
		return err
	}
	if product.Stock < quantity {
		return insufficientStockFor(product.NameAr)
	}

	item.Quantity = quantity
	if err := s.cartRepo.Update(item); err != nil {
		return apperrors.Upstream(err, "cart")
	}
	return nil
}

func (s *cartService) RemoveFromCart(userID, cartItemID uint) error {
	if _, err := s.ownedItem(userID, cartItemID); err != nil {
		return err
	}
	if err := s.cartRepo.Delete(cartItemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		return apperrors.Upstream(err, "cart")
	}
	return nil
}

func (s *cartService) ClearCart(userID uint) error {
	removed, err := s.cartRepo.DeleteByUserID(userID)
	if err != nil {
		return apperrors.Upstream(err, "cart")
	}
	logger.Info("Cart cleared", map[string]interface{}{
		"user_id": userID,
		"removed": removed,
	})
	return nil
}
