package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/services"
)

var notFoundErrors = []error{
	domain.ErrUserNotFound,
	domain.ErrHabitNotFound,
	domain.ErrProofNotFound,
}

var validationErrors = []error{
	domain.ErrUserNameEmpty,
	domain.ErrInvalidTimezone,
	domain.ErrInvalidBatchDate,
	domain.ErrHabitNameEmpty,
	domain.ErrHabitNameTooLong,
	domain.ErrHabitTextTooLong,
	domain.ErrHabitInvalidUserID,
	domain.ErrInvalidWeeklyTarget,
	domain.ErrInvalidHabitStatus,
	domain.ErrTooManyDomainTags,
	domain.ErrConflictingFlags,
	domain.ErrProofOutOfRange,
	domain.ErrInvalidProofDate,
	domain.ErrProofDateRequired,
	domain.ErrProofNoteTooLong,
	domain.ErrProofUnitTooLong,
	domain.ErrProofMissingHabit,
	domain.ErrProofMissingUserID,
	services.ErrMessageIDRequired,
}

var conflictErrors = []error{
	domain.ErrUserExists,
	domain.ErrUserNotActive,
	domain.ErrInvalidTransition,
	domain.ErrHabitNotActive,
	domain.ErrProofExists,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func handleError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case isAny(err, notFoundErrors):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case isAny(err, validationErrors):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case isAny(err, conflictErrors):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrInvalidCycle):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
}

// parseDate accepts either a calendar date, read as midnight in loc, or an
// RFC3339 instant.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// isCalendarDate reports whether s is a bare YYYY-MM-DD date.
func isCalendarDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}
