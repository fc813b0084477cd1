package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"restaurant_manager/internal/services"

	"github.com/gin-gonic/gin"
)

// respondError is the error boundary: validation failures surface their
// message as a 400 for the dashboard; anything else is a generic 500.
func respondError(c *gin.Context, err error) {
	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
