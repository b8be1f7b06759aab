package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/animestore-backend/internal/app/service"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0,lte=99"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0,lte=99"`
}

// GetCart returns user's cart
// GET /api/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.GetUserCart(userID)
	if err != nil {
		respondError(c, err, "get cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddToCart POST /api/cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req AddToCartRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := ctrl.cartService.AddToCart(userID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err, "add to cart")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// UpdateCartItem PUT /api/cart/:id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateCartRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := ctrl.cartService.UpdateCartItem(userID, itemID, req.Quantity); err != nil {
		respondError(c, err, "update cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RemoveFromCart DELETE /api/cart/:id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.cartService.RemoveFromCart(userID, itemID); err != nil {
		respondError(c, err, "remove from cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ClearCart DELETE /api/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := ctrl.cartService.ClearCart(userID); err != nil {
		respondError(c, err, "clear cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
