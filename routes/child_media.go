package routes

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"daycare-server/database"
	"daycare-server/media"
	"daycare-server/middleware"
)

// validateImageFile checks the extension and size (<= 5MB).
func validateImageFile(h *multipart.FileHeader) bool {
	if h == nil || h.Size <= 0 || h.Size > 5*1024*1024 {
		return false
	}
	switch strings.ToLower(filepath.Ext(h.Filename)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	default:
		return false
	}
}

// RegisterChildMediaRoutes adds the child photo upload. A nil uploader leaves
// the route answering 503.
func RegisterChildMediaRoutes(router *gin.RouterGroup, uploader media.Uploader) {
	router.POST("/children/:id/photo", middleware.AuthMiddleware(), uploadChildPhoto(uploader))
}

func uploadChildPhoto(uploader media.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uploader == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "Uploads disabled",
				"message": media.ErrNotConfigured.Error(),
			})
			return
		}

		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		header, err := c.FormFile("photo")
		if err != nil || !validateImageFile(header) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "Invalid request",
				"fields": gin.H{"photo": "must be a jpg, png or webp image of at most 5MB"},
			})
			return
		}

		child, ok := loadChild(c, id)
		if !ok {
			return
		}

		file, err := header.Open()
		if err != nil {
			internalError(c, "Failed to read upload", err)
			return
		}
		defer file.Close()

		url, err := uploader.UploadImage(c.Request.Context(), file, "children/photos", fmt.Sprintf("child_%d", child.ID))
		if err != nil {
			logFor(c).Warn("child photo upload failed", zap.Uint("child_id", child.ID), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{
				"error":   "Upload failed",
				"message": "The photo could not be stored",
			})
			return
		}

		if err := database.DB.WithContext(c.Request.Context()).Model(child).Update("photo_url", url).Error; err != nil {
			internalError(c, "Failed to save photo", err)
			return
		}
		child.PhotoURL = &url

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    child,
		})
	}
}
