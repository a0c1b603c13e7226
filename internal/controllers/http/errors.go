package http

import (
	"errors"
	"net/http"

	"checkout-service/internal/domain"
	"checkout-service/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const internalErrorMessage = "Internal server error"

// errorResponse maps err onto a status code and a JSON body.
func errorResponse(err error) (int, gin.H) {
	var (
		verr    *domain.ValidationError
		bindErr validator.ValidationErrors
		perr    *infra.ProviderError
	)

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": verr.Fields}
	case errors.As(err, &bindErr):
		return http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": validationDetails(bindErr)}
	case errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusBadRequest, gin.H{"message": "Payment verification failed"}
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, gin.H{"message": "Order not found"}
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, gin.H{"message": "Product not found"}
	case errors.Is(err, domain.ErrCustomerNotFound):
		return http.StatusNotFound, gin.H{"message": "Customer not found"}
	case errors.Is(err, domain.ErrPaymentNotFound):
		return http.StatusNotFound, gin.H{"message": "Payment not found"}
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrPaymentMismatch),
		errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, gin.H{"message": err.Error()}
	case errors.Is(err, domain.ErrPaymentNotConfigured):
		return http.StatusServiceUnavailable, gin.H{"message": "Payment provider is not configured"}
	case errors.As(err, &perr):
		return http.StatusInternalServerError, gin.H{"message": perr.Error()}
	default:
		return http.StatusInternalServerError, gin.H{"message": internalErrorMessage}
	}
}

func fail(c *gin.Context, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

// failPayment is fail for the payment endpoints, whose bodies always carry
// a success flag.
func failPayment(c *gin.Context, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	body["success"] = false
	c.JSON(status, body)
}

func bindErrorBody(err error) gin.H {
	var bindErr validator.ValidationErrors
	if errors.As(err, &bindErr) {
		return gin.H{"message": "Validation failed", "errors": validationDetails(bindErr)}
	}
	return gin.H{"message": "Invalid request: " + err.Error()}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, bindErrorBody(err))
}
