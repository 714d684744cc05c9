package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/meatmarket/internal/domain/models"
)

// writeError maps a service error to its HTTP status. Anything unrecognised
// is logged and answered with the generic internal message.
func writeError(c *gin.Context, logger *zap.Logger, err error, internal string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": verr.Fields})
	case errors.Is(err, models.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": forbiddenMessage(c.Request.Method)})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Data entry not found"})
	case errors.Is(err, models.ErrNothingToExport):
		c.JSON(http.StatusNotFound, gin.H{"message": "No data to export"})
	default:
		logger.Error(internal,
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": internal})
	}
}

func forbiddenMessage(method string) string {
	if method == http.MethodDelete {
		return "Not authorized to delete this entry"
	}
	return "Not authorized to update this entry"
}

// fieldChecker is a request body that can report its own field failures.
type fieldChecker interface {
	FieldErrors() map[string]string
}

// bindBody decodes the JSON body into dst. A field of the wrong JSON type is
// answered as a validation failure together with every other failing field
// of dst. It reports whether the handler may go on.
func bindBody(c *gin.Context, logger *zap.Logger, dst fieldChecker) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		logger.Debug("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation failed",
			"errors":  map[string]string{"body": "Request body must be valid JSON"},
		})
		return false
	}

	fields := dst.FieldErrors()
	if fields == nil {
		fields = map[string]string{}
	}
	fields[typeErr.Field] = "Must be a " + typeName(typeErr.Type.Kind())
	writeError(c, logger, models.NewValidationError(fields), "")
	return false
}

func typeName(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return "string"
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return "number"
	default:
		return "valid " + k.String()
	}
}
