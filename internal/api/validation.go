package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"storefront-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var setupValidator sync.Once

// SetupValidator configures gin's validator: JSON field names in errors, the
// orderstatus tag, and numeric checks (gt, gte) on decimal amounts
func SetupValidator() {
	setupValidator.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})

		err := v.RegisterValidation("orderstatus", func(fl validator.FieldLevel) bool {
			status := fl.Field().String()
			for _, s := range models.OrderStatuses {
				if s == status {
					return true
				}
			}
			return false
		})
		if err != nil {
			panic(fmt.Sprintf("failed to register orderstatus validator: %v", err))
		}
	})
}

// fieldError is one entry of a validation failure response
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// bindJSON decodes and validates the body into out. It answers 400 and
// returns false when the body is malformed or invalid.
func bindJSON(c *gin.Context, out interface{}) bool {
	err := c.ShouldBindJSON(out)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]fieldError, 0, len(verrs))
		for _, e := range verrs {
			details = append(details, fieldError{Field: e.Field(), Message: validationMessage(e)})
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "Request validation failed",
			"details": details,
		})
		return false
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
	return false
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Must be at least " + e.Param()
	case "max":
		return "Must be at most " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "orderstatus":
		return "Must be one of: " + strings.Join(models.OrderStatuses, " ")
	default:
		return "Invalid value"
	}
}
