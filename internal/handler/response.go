package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apperrors "github.com/edulink/linking-server-go/internal/errors"
	"github.com/edulink/linking-server-go/internal/httputil"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report field names as their json tags so validation messages match
	// the wire format.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

// decodeValid decodes the request body into dst and validates it.
func decodeValid(r *http.Request, dst any) *apperrors.AppError {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.ValidationError("Invalid request body")
	}

	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			switch fe.Tag() {
			case "required":
				return apperrors.MissingRequired(fe.Field())
			case "uuid":
				return apperrors.InvalidInput(fe.Field(), "must be a valid UUID")
			case "oneof":
				return apperrors.InvalidInput(fe.Field(), "must be one of: "+fe.Param())
			default:
				return apperrors.InvalidInput(fe.Field(), fe.Tag())
			}
		}
		return apperrors.ValidationError("Invalid request body")
	}

	return nil
}

// queryUUID extracts a required UUID query parameter.
func queryUUID(r *http.Request, name string) (string, *apperrors.AppError) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return "", apperrors.MissingRequired(name)
	}
	if _, err := uuid.Parse(value); err != nil {
		return "", apperrors.InvalidInput(name, "must be a valid UUID")
	}
	return value, nil
}
