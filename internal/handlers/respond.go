package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mssaude/voucher-service/internal/services"
)

// respondError maps the service error taxonomy to HTTP statuses: caller
// mistakes get a 400, everything else a 500.
func respondError(c *gin.Context, err error) {
	var inputErr *services.InputError
	if errors.As(err, &inputErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": inputErr.Error()})
		return
	}
	log.Printf("ERROR: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
