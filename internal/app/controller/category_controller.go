package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/animestore-backend/internal/app/service"
)

type CategoryController struct {
	categoryService service.CategoryService
}

func NewCategoryController(categoryService service.CategoryService) *CategoryController {
	return &CategoryController{categoryService: categoryService}
}

type CategoryRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	NameAr   string `json:"name_ar" binding:"required,max=100"`
	Slug     string `json:"slug" binding:"required,max=100,slug"`
	ImageURL string `json:"image_url" binding:"omitempty,url"`
}

func (r CategoryRequest) toInput() service.CategoryInput {
	return service.CategoryInput{Name: r.Name, NameAr: r.NameAr, Slug: r.Slug, ImageURL: r.ImageURL}
}

// ListCategories GET /api/categories
func (ctrl *CategoryController) ListCategories(c *gin.Context) {
	categories, err := ctrl.categoryService.ListCategories()
	if err != nil {
		respondError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategory GET /api/categories/:slug
func (ctrl *CategoryController) GetCategory(c *gin.Context) {
	category, err := ctrl.categoryService.GetCategoryBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, err, "get category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// CreateCategory POST /api/admin/categories
func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := ctrl.categoryService.CreateCategory(req.toInput())
	if err != nil {
		respondError(c, err, "create category")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// UpdateCategory PUT /api/admin/categories/:id
func (ctrl *CategoryController) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := ctrl.categoryService.UpdateCategory(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondError(c, err, "update category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory DELETE /api/admin/categories/:id
func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.categoryService.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
