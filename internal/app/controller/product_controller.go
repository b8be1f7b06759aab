package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	"github.com/ikkim/animestore-backend/internal/app/service"
	"github.com/shopspring/decimal"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// ProductRequest is the admin create/update body. Money travels as decimal
// strings so no float rounding happens on the way in.
type ProductRequest struct {
	CategoryID    uint     `json:"category_id" binding:"required"`
	Name          string   `json:"name" binding:"required,max=200"`
	NameAr        string   `json:"name_ar" binding:"required,max=200"`
	Description   string   `json:"description" binding:"max=5000"`
	DescriptionAr string   `json:"description_ar" binding:"max=5000"`
	Price         string   `json:"price" binding:"required,money"`
	SalePrice     *string  `json:"sale_price" binding:"omitempty,money"`
	Stock         int      `json:"stock" binding:"gte=0"`
	Images        []string `json:"images" binding:"max=10,dive,url"`
	Featured      bool     `json:"featured"`
}

func (r ProductRequest) toInput() service.ProductInput {
	in := service.ProductInput{
		CategoryID:    r.CategoryID,
		Name:          r.Name,
		NameAr:        r.NameAr,
		Description:   r.Description,
		DescriptionAr: r.DescriptionAr,
		Price:         decimal.RequireFromString(r.Price),
		Stock:         r.Stock,
		Images:        r.Images,
		Featured:      r.Featured,
	}
	if r.SalePrice != nil {
		sale := decimal.RequireFromString(*r.SalePrice)
		in.SalePrice = &sale
	}
	return in
}

// ListProducts returns one page of the catalog.
// GET /api/products?category=&search=&featured=&on_sale=&sort=&page=&page_size=
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	filter := repository.ProductFilter{
		CategorySlug: c.Query("category"),
		Search:       c.Query("search"),
		OnSale:       c.Query("on_sale") == "true",
		Sort:         repository.ProductSort(c.Query("sort")),
		Pagination:   paginationFromQuery(c),
	}
	if raw := c.Query("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err == nil {
			filter.Featured = &featured
		}
	}

	products, total, err := ctrl.productService.ListProducts(filter)
	if err != nil {
		respondError(c, err, "list products")
		return
	}
	c.JSON(http.StatusOK, newPage(products, total, filter.Pagination))
}

// GetProduct returns a product by ID
// GET /api/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProduct(id)
	if err != nil {
		respondError(c, err, "get product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct POST /api/admin/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := ctrl.productService.CreateProduct(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, err, "create product")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct PUT /api/admin/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := ctrl.productService.UpdateProduct(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondError(c, err, "update product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct DELETE /api/admin/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
