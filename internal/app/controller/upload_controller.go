package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/animestore-backend/internal/errors"
	"github.com/ikkim/animestore-backend/internal/storage"
)

var uploadFolders = map[string]bool{"products": true, "categories": true, "banners": true}

type UploadController struct {
	storage storage.BlobStore
}

func NewUploadController(blobs storage.BlobStore) *UploadController {
	return &UploadController{
		storage: blobs,
	}
}

type PresignRequest struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required,gt=0"`
	Folder      string `json:"folder"`
}

// Presign returns a presigned PUT URL for an image upload.
// POST /api/admin/uploads/presign
func (ctrl *UploadController) Presign(c *gin.Context) {
	var req PresignRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := storage.ValidateContentType(req.ContentType, storage.AllowedImageTypes); err != nil {
		apperrors.BadRequest(c, apperrors.UploadInvalidType, "يُسمح فقط بملفات الصور (JPEG, PNG, GIF, WEBP)")
		return
	}
	if err := storage.ValidateFileSize(req.Size, storage.MaxImageSize); err != nil {
		apperrors.BadRequest(c, apperrors.UploadTooLarge, "حجم الصورة يجب ألا يتجاوز 5 ميغابايت")
		return
	}
	folder := req.Folder
	if folder == "" {
		folder = "products"
	}
	if !uploadFolders[folder] {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "مجلد الرفع غير صالح")
		return
	}

	if ctrl.storage == nil {
		respondError(c, apperrors.Upstream(errors.New("blob storage not configured"), "presign upload"), "presign upload")
		return
	}
	presigned, err := ctrl.storage.PresignUpload(c.Request.Context(), req.Filename, req.ContentType, folder)
	if err != nil {
		respondError(c, apperrors.Upstream(err, "presign upload"), "presign upload")
		return
	}
	c.JSON(http.StatusOK, presigned)
}
