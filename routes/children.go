package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"daycare-server/database"
	"daycare-server/middleware"
	"daycare-server/models"
	"daycare-server/utils"
)

type childRequest struct {
	ParentID     uint    `json:"parentId"`
	FirstName    string  `json:"firstName" binding:"required,max=100"`
	LastName     string  `json:"lastName" binding:"required,max=100"`
	DateOfBirth  *string `json:"dateOfBirth"`
	Allergies    string  `json:"allergies"`
	MedicalNotes string  `json:"medicalNotes"`
}

// RegisterChildRoutes registers child records. Parents see and edit only their
// own children; staff see everyone. The payment fields are never writable here.
func RegisterChildRoutes(router *gin.RouterGroup) {
	children := router.Group("/children")
	children.Use(middleware.AuthMiddleware())

	children.GET("", listChildren)
	children.POST("", createChild)
	children.GET("/:id", getChild)
	children.PUT("/:id", updateChild)
	children.DELETE("/:id", middleware.RequireRoles(models.RoleManager), deleteChild)
}

func listChildren(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	query := database.DB.WithContext(c.Request.Context()).Order("last_name, first_name")
	if user.IsParent() {
		query = query.Where("parent_id = ?", user.ID)
	} else if parentID := c.Query("parentId"); parentID != "" {
		query = query.Where("parent_id = ?", parentID)
	}

	var children []models.Child
	if err := query.Find(&children).Error; err != nil {
		internalError(c, "Failed to fetch children", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    children,
		"count":   len(children),
	})
}

// loadChild fetches a child the current user may see. Other parents' children
// are reported as missing.
func loadChild(c *gin.Context, id uint) (*models.Child, bool) {
	user, _ := middleware.CurrentUser(c)

	var child models.Child
	err := database.DB.WithContext(c.Request.Context()).First(&child, id).Error
	if err == nil && user.IsParent() && child.ParentID != user.ID {
		err = gorm.ErrRecordNotFound
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "child not found"})
		return nil, false
	}
	if err != nil {
		internalError(c, "Failed to fetch child", err)
		return nil, false
	}
	return &child, true
}

func getChild(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	child, ok := loadChild(c, id)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    child,
	})
}

func parseBirthDate(c *gin.Context, s *string) (*time.Time, bool) {
	if s == nil || *s == "" {
		return nil, true
	}
	dob, err := utils.ParseDate(*s)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Invalid request",
			"fields": gin.H{"dateOfBirth": "must be a date formatted as YYYY-MM-DD"},
		})
		return nil, false
	}
	return &dob, true
}

func createChild(c *gin.Context) {
	var req childRequest
	if !bindJSON(c, &req) {
		return
	}
	dob, ok := parseBirthDate(c, req.DateOfBirth)
	if !ok {
		return
	}

	user, _ := middleware.CurrentUser(c)
	parentID := user.ID
	if !user.IsParent() {
		if req.ParentID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "Invalid request",
				"fields": gin.H{"parentId": "is required"},
			})
			return
		}
		var parent models.User
		if err := database.DB.WithContext(c.Request.Context()).
			Where("id = ? AND role = ?", req.ParentID, models.RoleParent).
			First(&parent).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "parent not found"})
			return
		}
		parentID = parent.ID
	}

	child := models.Child{
		ParentID:     parentID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		DateOfBirth:  dob,
		Allergies:    req.Allergies,
		MedicalNotes: req.MedicalNotes,
	}
	if err := database.DB.WithContext(c.Request.Context()).Create(&child).Error; err != nil {
		internalError(c, "Failed to create child", err)
		return
	}

	logFor(c).Info("child registered", zap.Uint("child_id", child.ID), zap.Uint("parent_id", parentID))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Child registered successfully",
		"data":    child,
	})
}

func updateChild(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req childRequest
	if !bindJSON(c, &req) {
		return
	}
	dob, ok := parseBirthDate(c, req.DateOfBirth)
	if !ok {
		return
	}

	child, ok := loadChild(c, id)
	if !ok {
		return
	}

	updates := map[string]interface{}{
		"first_name":    req.FirstName,
		"last_name":     req.LastName,
		"date_of_birth": dob,
		"allergies":     req.Allergies,
		"medical_notes": req.MedicalNotes,
	}
	if err := database.DB.WithContext(c.Request.Context()).Model(child).Updates(updates).Error; err != nil {
		internalError(c, "Failed to update child", err)
		return
	}
	database.DB.WithContext(c.Request.Context()).First(child, child.ID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Child updated successfully",
		"data":    child,
	})
}

// deleteChild refuses while the child has schedules, since bookings and
// payments are never hard deleted.
func deleteChild(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	child, ok := loadChild(c, id)
	if !ok {
		return
	}

	var bookings int64
	if err := database.DB.WithContext(c.Request.Context()).Model(&models.Schedule{}).Where("child_id = ?", child.ID).Count(&bookings).Error; err != nil {
		internalError(c, "Failed to delete child", err)
		return
	}
	if bookings > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Child has bookings",
			"message": "Children with schedules cannot be deleted",
		})
		return
	}

	err := database.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("child_id = ?", child.ID).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		if err := tx.Where("child_id = ?", child.ID).Delete(&models.Incident{}).Error; err != nil {
			return err
		}
		return tx.Delete(child).Error
	})
	if err != nil {
		internalError(c, "Failed to delete child", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Child deleted",
	})
}
