package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harekrishna1602/anvesha-2.0/logging"
	"github.com/harekrishna1602/anvesha-2.0/middleware"
	"github.com/harekrishna1602/anvesha-2.0/services"
	"github.com/harekrishna1602/anvesha-2.0/session"
)

// dateLayout is the calendar date format accepted by every date field
const dateLayout = "2006-01-02"

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondFailure(c *gin.Context, status int, code, message string, details interface{}) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

func bindFailure(c *gin.Context, err error) {
	respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", err.Error())
}

// respondError maps a service error onto the response envelope. entity
// prefixes not-found and conflict codes, e.g. ORDER_NOT_FOUND.
func respondError(c *gin.Context, entity string, err error) {
	var (
		validation  *services.ValidationError
		partial     *services.PartialFailureError
		persistence *services.PersistenceError
	)

	switch {
	case errors.As(err, &validation):
		respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.Message, gin.H{"field": validation.Field})
	case errors.As(err, &partial):
		respondFailure(c, http.StatusMultiStatus, "PARTIAL_FAILURE", partial.Error(), failureDetails(partial))
	case errors.Is(err, session.ErrNoActor):
		respondFailure(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information", nil)
	case services.IsNotFound(err):
		respondFailure(c, http.StatusNotFound, entityCode(entity)+"_NOT_FOUND", humanize(entity)+" not found", nil)
	case services.IsConflict(err):
		respondFailure(c, http.StatusConflict, entityCode(entity)+"_EXISTS", humanize(entity)+" conflicts with an existing record", nil)
	default:
		logging.FromContext(c.Request.Context()).Error("request failed", "entity", entity, "error", err)
		_ = c.Error(err)
		code := "INTERNAL_ERROR"
		if errors.As(err, &persistence) {
			code = "DATABASE_ERROR"
		}
		respondFailure(c, http.StatusInternalServerError, code, "Failed to process "+strings.ToLower(entity), nil)
	}
}

func failureDetails(partial *services.PartialFailureError) []gin.H {
	details := make([]gin.H, 0, len(partial.Failures))
	for _, f := range partial.Failures {
		details = append(details, gin.H{"id": f.ID, "op": f.Op, "error": f.Err.Error()})
	}
	return details
}

func entityCode(entity string) string {
	return strings.ToUpper(strings.ReplaceAll(entity, " ", "_"))
}

func humanize(entity string) string {
	if entity == "" {
		return "Record"
	}
	return strings.ToUpper(entity[:1]) + entity[1:]
}

// requireActor returns the authenticated actor or writes a 401 response
func requireActor(c *gin.Context) (session.Actor, bool) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		respondFailure(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information", nil)
		return session.Actor{}, false
	}
	return actor, true
}

// idParam parses the :id path parameter or writes a 400 response
func idParam(c *gin.Context, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid "+entity+" ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// parseDate accepts a calendar date or an RFC 3339 timestamp
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// parseOptionalDate parses a nullable date field, treating blank as absent
func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := parseDate(*value)
	if err != nil {
		return nil, &services.ValidationError{Field: field, Message: "expected a date as YYYY-MM-DD"}
	}
	return &t, nil
}
