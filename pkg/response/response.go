package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stagepass/backend/pkg/apperr"
)

// Body is the standard API response envelope.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// FieldError carries field-level validation detail (e.g. overlapping
// pricing periods with the ids of the conflicting rows).
type FieldError struct {
	Field       string      `json:"field"`
	Message     string      `json:"message"`
	ConflictIDs []uuid.UUID `json:"conflict_ids,omitempty"`
}

// validationBody extends the envelope with field detail for 400 responses.
type validationBody struct {
	Body
	Fields []FieldError `json:"fields,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Error: err})
}

// Denied sends the uniform authorization failure. Every denial (missing
// scope, missing membership, gated resource that does not exist) produces
// this exact body so callers cannot probe for resource existence.
func Denied(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, Body{Success: false, Error: "Unauthorized"})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, Body{Success: false, Error: err})
}

// Conflict sends 409.
func Conflict(c *gin.Context, err string) {
	c.JSON(http.StatusConflict, Body{Success: false, Error: err})
}

// ServiceUnavailable sends 503, e.g. when object storage is not configured.
func ServiceUnavailable(c *gin.Context, err string) {
	c.JSON(http.StatusServiceUnavailable, Body{Success: false, Error: err})
}

// Internal sends 500 with detail withheld.
func Internal(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, Body{Success: false, Error: "internal error"})
}

// AppError maps a tagged application error to its HTTP response.
// Validation errors carry field detail; internal and integrity errors are
// reduced to an opaque 500 (the caller logs the underlying cause).
func AppError(c *gin.Context, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		Internal(c)
		return
	}
	switch appErr.Kind {
	case apperr.KindUnauthorized:
		Denied(c)
	case apperr.KindValidation:
		c.JSON(http.StatusBadRequest, validationBody{
			Body: Body{Success: false, Error: appErr.Message},
			Fields: []FieldError{{
				Field:       appErr.Field,
				Message:     appErr.Message,
				ConflictIDs: appErr.ConflictIDs,
			}},
		})
	case apperr.KindConflict:
		Conflict(c, appErr.Message)
	case apperr.KindNotFound:
		NotFound(c, appErr.Message)
	default:
		Internal(c)
	}
}
