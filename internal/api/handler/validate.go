package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Rrens/chat-workspace/internal/api/response"
	"github.com/Rrens/chat-workspace/internal/domain"
)

var validate = validator.New()

// decode reads a JSON body into dst and validates it. It writes the error response itself.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make(map[string]string)
			for _, e := range validationErrors {
				field := e.Field()
				tag := e.Tag()
				switch tag {
				case "required":
					fields[field] = "field is required"
				case "min":
					fields[field] = "must be at least " + e.Param() + " characters"
				case "max":
					fields[field] = "must be at most " + e.Param() + " characters"
				default:
					fields[field] = "validation failed on " + tag
				}
			}
			response.BadRequest(w, fields)
			return false
		}
		response.BadRequest(w, err.Error())
		return false
	}
	return true
}

// writeServiceError maps service errors to HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		response.BadRequest(w, map[string]string{verr.Field: verr.Message})
	case errors.Is(err, domain.ErrEmptyMessage):
		response.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrSendInFlight):
		response.Conflict(w, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, domain.ErrProfileExists):
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w, err.Error())
	}
}
