package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"propmap/internal/model"
)

// DatasetHandler serves the read-only listing/POI snapshots to the map UI
type DatasetHandler struct {
	dataset *model.Dataset
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(dataset *model.Dataset) *DatasetHandler {
	return &DatasetHandler{dataset: dataset}
}

// Listings handles GET /api/v1/listings
func (h *DatasetHandler) Listings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"listings": h.dataset.Listings,
		"total":    len(h.dataset.Listings),
	})
}

// Listing handles GET /api/v1/listings/:id
func (h *DatasetHandler) Listing(c *gin.Context) {
	listing := h.dataset.ListingByID(c.Param("id"))
	if listing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}
	c.JSON(http.StatusOK, listing)
}

// POIs handles GET /api/v1/pois
func (h *DatasetHandler) POIs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"pois":  h.dataset.POIs,
		"total": len(h.dataset.POIs),
	})
}
