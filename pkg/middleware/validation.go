package middleware

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/retail-platform/order-fulfillment/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// InitValidator initializes the validator with custom validators
func InitValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()

		// Register custom validators
		_ = validate.RegisterValidation("order_id", validateOrderID)
		_ = validate.RegisterValidation("customer_id", validateCustomerID)
		_ = validate.RegisterValidation("product_id", validateProductID)
		_ = validate.RegisterValidation("tracking_number", validateTrackingNumber)
		_ = validate.RegisterValidation("phone", validatePhone)
		_ = validate.RegisterValidation("payment_method", validatePaymentMethod)
		_ = validate.RegisterValidation("shipment_status", validateShipmentStatus)
		_ = validate.RegisterValidation("safe_string", validateSafeString)

		// Use JSON tag names for error messages
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return fld.Name
			}
			return name
		})

		// Set as Gin's default validator
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("order_id", validateOrderID)
			_ = v.RegisterValidation("customer_id", validateCustomerID)
			_ = v.RegisterValidation("product_id", validateProductID)
			_ = v.RegisterValidation("tracking_number", validateTrackingNumber)
			_ = v.RegisterValidation("phone", validatePhone)
			_ = v.RegisterValidation("payment_method", validatePaymentMethod)
			_ = v.RegisterValidation("shipment_status", validateShipmentStatus)
			_ = v.RegisterValidation("safe_string", validateSafeString)

			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
				if name == "-" {
					return fld.Name
				}
				return name
			})
		}
	})

	return validate
}

// GetValidator returns the singleton validator instance
func GetValidator() *validator.Validate {
	if validate == nil {
		return InitValidator()
	}
	return validate
}

// Custom validators

var (
	orderIDRegex    = regexp.MustCompile(`^ORD-[a-zA-Z0-9]{8,}$`)
	customerIDRegex = regexp.MustCompile(`^CUST-[a-zA-Z0-9]{4,}$`)
	productIDRegex  = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{2,49}$`)
	trackingRegex   = regexp.MustCompile(`^TRK-[A-Z0-9]{8}$`)
	phoneRegex      = regexp.MustCompile(`^[+]?[0-9]{10,15}$`)
	safeStringRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.,!?@#$%&*()+=:;'"<>\/\[\]{}|\\~\x60]+$`)
)

func validateOrderID(fl validator.FieldLevel) bool {
	return orderIDRegex.MatchString(fl.Field().String())
}

func validateCustomerID(fl validator.FieldLevel) bool {
	return customerIDRegex.MatchString(fl.Field().String())
}

func validateProductID(fl validator.FieldLevel) bool {
	return productIDRegex.MatchString(fl.Field().String())
}

func validateTrackingNumber(fl validator.FieldLevel) bool {
	return trackingRegex.MatchString(fl.Field().String())
}

func validatePhone(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	validMethods := map[string]bool{
		"CASH":        true,
		"DEBIT_CARD":  true,
		"CREDIT_CARD": true,
	}
	return validMethods[value]
}

func validateShipmentStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	validStatuses := map[string]bool{
		"ORDER_PLACED":     true,
		"PROCESSING":       true,
		"SHIPPED":          true,
		"IN_TRANSIT":       true,
		"OUT_FOR_DELIVERY": true,
		"DELIVERED":        true,
		"DELIVERY_FAILED":  true,
		"RETURNED":         true,
	}
	return validStatuses[value]
}

func validateSafeString(fl validator.FieldLevel) bool {
	return safeStringRegex.MatchString(fl.Field().String())
}

// ValidationErrorFormatter formats validation errors into a map
func ValidationErrorFormatter(err error) map[string]string {
	fields := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			fields[field] = formatValidationError(e)
		}
	}

	return fields
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "order_id":
		return "must be a valid order ID (format: ORD-xxxxxxxx)"
	case "customer_id":
		return "must be a valid customer ID (format: CUST-xxxx)"
	case "product_id":
		return "must be a valid product ID (uppercase alphanumeric with dashes)"
	case "tracking_number":
		return "must be a valid tracking number (format: TRK-XXXXXXXX)"
	case "phone":
		return "must be a valid phone number (10-15 digits, optional leading +)"
	case "payment_method":
		return "must be one of: CASH, DEBIT_CARD, CREDIT_CARD"
	case "shipment_status":
		return "must be a valid shipment status"
	case "safe_string":
		return "contains invalid characters"
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}

// BindAndValidate binds request body and validates it
func BindAndValidate(c *gin.Context, obj interface{}) *errors.AppError {
	if err := c.ShouldBindJSON(obj); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			fields := ValidationErrorFormatter(validationErrors)
			return errors.ErrValidationWithFields("validation failed", fields)
		}
		return errors.ErrBadRequest("invalid request body: " + err.Error())
	}
	return nil
}

// ValidateStruct validates a struct using the validator
func ValidateStruct(obj interface{}) *errors.AppError {
	v := GetValidator()
	if err := v.Struct(obj); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			fields := ValidationErrorFormatter(validationErrors)
			return errors.ErrValidationWithFields("validation failed", fields)
		}
		return errors.ErrBadRequest("validation failed: " + err.Error())
	}
	return nil
}

// SanitizeString removes potentially dangerous characters from a string
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")

	// Trim whitespace
	s = strings.TrimSpace(s)

	return s
}

// InputSanitizer middleware sanitizes string inputs
func InputSanitizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Sanitize query parameters
		query := c.Request.URL.Query()
		for key, values := range query {
			for i, v := range values {
				values[i] = SanitizeString(v)
			}
			query[key] = values
		}
		c.Request.URL.RawQuery = query.Encode()

		c.Next()
	}
}

// ContentType middleware ensures proper content type for POST/PUT/PATCH
func ContentType() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == "POST" || c.Request.Method == "PUT" || c.Request.Method == "PATCH" {
			contentType := c.GetHeader("Content-Type")
			if contentType == "" || !strings.HasPrefix(contentType, "application/json") {
				// Allow empty body for some endpoints
				if c.Request.ContentLength > 0 {
					AbortWithAppError(c, &errors.AppError{
						Code:       "INVALID_CONTENT_TYPE",
						Message:    "Content-Type must be application/json",
						HTTPStatus: 415,
					})
					return
				}
			}
		}
		c.Next()
	}
}
