package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-api/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-api/internal/catalog"
	"github.com/vasiliy-maslov/ecommerce-api/internal/coupon"
	"github.com/vasiliy-maslov/ecommerce-api/internal/order"
	"github.com/vasiliy-maslov/ecommerce-api/internal/product"
	"github.com/vasiliy-maslov/ecommerce-api/internal/review"
	"github.com/vasiliy-maslov/ecommerce-api/internal/user"
)

var (
	errUnauthorized = errors.New("not authorized, no token provided")
	errForbidden    = errors.New("access denied, admin only")
	errInvalidID    = errors.New("invalid id parameter")
)

type ErrorResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// envelope builds a success body: {"success": true, "message": ..., key: payload}.
func envelope(message, key string, payload any) map[string]any {
	body := map[string]any{
		"success": true,
		"message": message,
	}
	if key != "" {
		body[key] = payload
	}
	return body
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Success: false, Message: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrProductNotFound):
		return http.StatusNotFound

	case errors.Is(err, user.ErrEmailExists),
		errors.Is(err, catalog.ErrExists),
		errors.Is(err, product.ErrExists),
		errors.Is(err, review.ErrAlreadyReviewed),
		errors.Is(err, coupon.ErrCodeExists),
		errors.Is(err, order.ErrInsufficientStock):
		return http.StatusConflict

	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, errForbidden):
		return http.StatusForbidden

	case errors.Is(err, errInvalidID),
		errors.Is(err, user.ErrPasswordEmpty),
		errors.Is(err, catalog.ErrNameRequired),
		errors.Is(err, product.ErrNameRequired),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidQuantity),
		errors.Is(err, product.ErrCategoryNotFound),
		errors.Is(err, product.ErrBrandNotFound),
		errors.Is(err, product.ErrInvalidPriceRange),
		errors.Is(err, review.ErrInvalidRating),
		errors.Is(err, review.ErrMessageRequired),
		errors.Is(err, coupon.ErrCodeRequired),
		errors.Is(err, coupon.ErrInvalidDiscount),
		errors.Is(err, coupon.ErrStartDateInPast),
		errors.Is(err, coupon.ErrEndBeforeStart),
		errors.Is(err, order.ErrShippingAddressRequired),
		errors.Is(err, order.ErrNoOrderItems),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrCouponExpired),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidStatusTransition):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError writes err with its mapped status. Domain errors are
// shown to the client as is; anything unmapped gets fallback instead.
func respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	code := mapErrorToStatusCode(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Msg(fallback)
		respondWithError(w, code, fallback)
		return
	}
	respondWithError(w, code, capitalize(err.Error()))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func formatValidationErrors(errs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(errs))
	for _, fe := range errs {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = fmt.Sprintf("Field '%s' is required", fe.Field())
		case "email":
			msg = fmt.Sprintf("Field '%s' must be a valid email address", fe.Field())
		case "min":
			if fe.Kind() == reflect.String {
				msg = fmt.Sprintf("Field '%s' must be at least %s characters long", fe.Field(), fe.Param())
			} else if fe.Kind() == reflect.Slice {
				msg = fmt.Sprintf("Field '%s' must contain at least %s items", fe.Field(), fe.Param())
			} else {
				msg = fmt.Sprintf("Field '%s' must be at least %s", fe.Field(), fe.Param())
			}
		case "max":
			msg = fmt.Sprintf("Field '%s' must be at most %s", fe.Field(), fe.Param())
		case "gt":
			msg = fmt.Sprintf("Field '%s' must be greater than %s", fe.Field(), fe.Param())
		case "gte":
			msg = fmt.Sprintf("Field '%s' must be greater than or equal to %s", fe.Field(), fe.Param())
		case "lte":
			msg = fmt.Sprintf("Field '%s' must be less than or equal to %s", fe.Field(), fe.Param())
		case "oneof":
			msg = fmt.Sprintf("Field '%s' must be one of: %s", fe.Field(), fe.Param())
		case "url":
			msg = fmt.Sprintf("Field '%s' must be a valid URL", fe.Field())
		case "uuid", "uuid4":
			msg = fmt.Sprintf("Field '%s' must be a valid UUID", fe.Field())
		default:
			msg = fmt.Sprintf("Field '%s' is invalid (%s)", fe.Field(), fe.Tag())
		}
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		out = append(out, FieldError{Field: field, Message: msg})
	}
	return out
}

// decodeAndValidate reads a JSON body into dst and runs validator tags on it.
// It writes the 400 response itself and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		log.Warn().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request payload: %v", err))
		return false
	}

	if err := v.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithJSON(w, http.StatusBadRequest, ErrorResponse{
				Success: false,
				Message: "Validation failed",
				Errors:  formatValidationErrors(validationErrors),
			})
			return false
		}
		log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
		respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		return false
	}

	return true
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.FromString(raw)
	if err != nil {
		log.Warn().Err(err).Str(name, raw).Msg("Failed to parse id parameter from URL")
		return uuid.Nil, errInvalidID
	}
	return id, nil
}
