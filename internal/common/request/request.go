package request

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/alikamatu/medi-rides-sub003/internal/common/response"
)

const maxBodySize = 1048576 // 1MB

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ReadJSON reads a single JSON value from the request body.
func ReadJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return errors.New("malformed JSON")
		case errors.As(err, &unmarshalTypeError):
			return errors.New("invalid JSON type")
		case errors.As(err, &maxBytesError):
			return errors.New("request body too large")
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("malformed JSON")
		default:
			return err
		}
	}

	if decoder.More() {
		return errors.New("body must contain only a single JSON value")
	}

	return nil
}

// ReadAndValidate reads JSON and validates it using struct tags.
func ReadAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if err := ReadJSON(w, r, dst); err != nil {
		return err
	}

	return Validate(dst)
}

// Validate validates a struct using validation tags.
func Validate(dst interface{}) error {
	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			details := make([]response.ErrorDetail, 0, len(validationErrors))
			for _, fe := range validationErrors {
				details = append(details, response.ErrorDetail{
					Field:   fe.Field(),
					Message: validationMessage(fe),
					Code:    fe.Tag(),
				})
			}
			return &ValidationError{Details: details}
		}
		return err
	}

	return nil
}

// ValidationError carries per-field validation failures.
type ValidationError struct {
	Details []response.ErrorDetail
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) ([]response.ErrorDetail, bool) {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Details, true
	}
	return nil, false
}

// HandleError writes the appropriate response for a request error.
// Returns true if an error was handled.
func HandleError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}

	if details, ok := IsValidationError(err); ok {
		response.ValidationError(w, details)
		return true
	}

	response.BadRequest(w, err.Error())
	return true
}

// Pagination holds the standard list query parameters.
type Pagination struct {
	Page   int
	Limit  int
	Search string
}

// Offset returns the row offset for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ReadPagination parses page, limit and search query parameters with
// sane bounds. Defaults: page 1, limit 20, max limit 100.
func ReadPagination(r *http.Request) Pagination {
	p := Pagination{Page: 1, Limit: 20}

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			if n > 100 {
				n = 100
			}
			p.Limit = n
		}
	}
	p.Search = r.URL.Query().Get("search")

	return p
}

func validationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "oneof":
		return "Value must be one of: " + err.Param()
	case "gte":
		return "Value must be greater than or equal to " + err.Param()
	case "lte":
		return "Value must be less than or equal to " + err.Param()
	default:
		return "Invalid value"
	}
}
