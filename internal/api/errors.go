package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mmcdole/showtrack/internal/domain"
)

var errInvalidID = errors.New("invalid show id")

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrShowNotFound), errors.Is(err, domain.ErrRemoteNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRemoteUnavailable), errors.Is(err, domain.ErrAuthFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	} else {
		s.logger.Debug("request rejected", "path", c.FullPath(), "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func showID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
