package controller

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	apperrors "github.com/ikkim/animestore-backend/internal/errors"
	"github.com/ikkim/animestore-backend/internal/middleware"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the custom tags used by request DTOs to gin's
// validator and makes error fields report their JSON names.
func RegisterValidators() error {
	registerOnce.Do(func() { registerErr = registerValidators() })
	return registerErr
}

func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("money", validateMoney); err != nil {
		return err
	}
	return v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
}

// validateMoney accepts a non-negative decimal string with at most two places.
func validateMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return !d.IsNegative() && d.Exponent() >= -2
}

// bindJSON decodes the body strictly: unknown fields and trailing data are
// rejected before struct validation runs. It writes the 400 itself and
// reports whether the handler should continue.
func bindJSON(c *gin.Context, dst interface{}) bool {
	log := middleware.GetLoggerFromContext(c)

	dec := json.NewDecoder(io.LimitReader(c.Request.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		log.Warn("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "صيغة البيانات المرسلة غير صحيحة")
		return false
	}
	if dec.More() {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "صيغة البيانات المرسلة غير صحيحة")
		return false
	}

	if err := binding.Validator.ValidateStruct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			log.Warn("Request validation failed", map[string]interface{}{
				"fields": fields,
			})
			apperrors.RespondWithValidationError(c, fields)
			return false
		}
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "البيانات المدخلة غير صالحة")
		return false
	}
	return true
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "المعرّف غير صالح")
		return 0, false
	}
	return uint(id), true
}

func paginationFromQuery(c *gin.Context) repository.Pagination {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	return repository.Pagination{Page: page, PageSize: size}.Normalize()
}

// respondError writes err and logs it at a level matching its kind.
func respondError(c *gin.Context, err error, context string) {
	log := middleware.GetLoggerFromContext(c)
	if apperrors.KindOf(err) == apperrors.KindUpstream {
		log.Error("Request failed", err, map[string]interface{}{
			"operation": context,
		})
	} else {
		log.Debug("Request rejected", map[string]interface{}{
			"operation": context,
			"error":     err.Error(),
		})
	}
	apperrors.Respond(c, err, context)
}

func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return 0, false
	}
	return userID, true
}

type pageResponse struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func newPage(items interface{}, total int64, p repository.Pagination) pageResponse {
	return pageResponse{Items: items, Total: total, Page: p.Page, PageSize: p.PageSize}
}
