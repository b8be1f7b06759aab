package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/animestore-backend/internal/app/service"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{reviewService: reviewService}
}

// Range and presence are checked by the service so the error codes stay
// REVIEW_INVALID_RATING and REVIEW_MISSING_FIELD.
type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title" binding:"max=200"`
	Comment string `json:"comment" binding:"max=2000"`
}

// ListReviews GET /api/products/:id/reviews
func (ctrl *ReviewController) ListReviews(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page := paginationFromQuery(c)

	reviews, total, err := ctrl.reviewService.ListProductReviews(productID, page)
	if err != nil {
		respondError(c, err, "list reviews")
		return
	}
	c.JSON(http.StatusOK, newPage(reviews, total, page))
}

// CreateReview POST /api/products/:id/reviews
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := ctrl.reviewService.AddReview(c.Request.Context(), userID, productID, service.ReviewInput{
		Rating:  req.Rating,
		Title:   req.Title,
		Comment: req.Comment,
	})
	if err != nil {
		respondError(c, err, "create review")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": review})
}
