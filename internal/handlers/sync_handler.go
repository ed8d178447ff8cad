package handlers

import (
	"errors"
	"net/http"

	"desksync/internal/logging"
	"desksync/internal/middleware"
	"desksync/internal/models"
	"desksync/internal/services"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	svc *services.SyncService
	log *logging.Logger
}

func NewSyncHandler(svc *services.SyncService, log *logging.Logger) *SyncHandler {
	return &SyncHandler{svc: svc, log: log}
}

// Fetch returns the user's full snapshot: all four slices in one response,
// or an error with no partial data.
func (h *SyncHandler) Fetch(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	snap, err := h.svc.Snapshot(userID)
	if err != nil {
		h.log.Errorf("snapshot for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch data"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Push replaces every slice present in the body. Slices committed before a
// later slice fails stay committed; the client treats a failed push as
// "re-push everything", which full replacement makes safe.
func (h *SyncHandler) Push(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	var req models.PushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	if err := h.svc.Replace(userID, req); err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
			return
		}
		h.log.Errorf("replace for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sync data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
