package api

import (
	"net/http" // HTTP status codes

	"mebe/internal/domain" // Gift catalog

	"github.com/gin-gonic/gin" // Gin web framework
)

// giftImageBase is the seed base for the fixed catalog images.
const giftImageBase = "https://picsum.photos/seed/"

// ListGiftsHandler returns the fixed gift catalog together with the support
// contact link used by the "claim" action
func ListGiftsHandler(contactLink string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"gifts":       domain.GiftCatalog(giftImageBase), // The fixed catalog
			"contactLink": contactLink,                       // Claiming routes to support
		})
	}
}
