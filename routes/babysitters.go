package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"daycare-server/database"
	"daycare-server/middleware"
	"daycare-server/models"
)

type babysitterRequest struct {
	FirstName   string `json:"firstName" binding:"required,max=100"`
	LastName    string `json:"lastName" binding:"required,max=100"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,max=20"`
	Email       string `json:"email" binding:"omitempty,email"`
	IsActive    *bool  `json:"isActive"`
}

// RegisterBabysitterRoutes registers the babysitter directory. Every signed-in
// user can browse it; only managers edit it.
func RegisterBabysitterRoutes(router *gin.RouterGroup) {
	babysitters := router.Group("/babysitters")
	babysitters.Use(middleware.AuthMiddleware())

	manager := middleware.RequireRoles(models.RoleManager)

	babysitters.GET("", listBabysitters)
	babysitters.GET("/:id", getBabysitter)
	babysitters.POST("", manager, createBabysitter)
	babysitters.PUT("/:id", manager, updateBabysitter)
	babysitters.DELETE("/:id", manager, deactivateBabysitter)
}

func listBabysitters(c *gin.Context) {
	query := database.DB.WithContext(c.Request.Context()).Order("last_name, first_name")
	if c.Query("all") != "true" {
		query = query.Where("is_active = ?", true)
	}

	var babysitters []models.Babysitter
	if err := query.Find(&babysitters).Error; err != nil {
		internalError(c, "Failed to fetch babysitters", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    babysitters,
		"count":   len(babysitters),
	})
}

func findBabysitter(c *gin.Context) (*models.Babysitter, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}

	var babysitter models.Babysitter
	if err := database.DB.WithContext(c.Request.Context()).First(&babysitter, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "babysitter not found"})
			return nil, false
		}
		internalError(c, "Failed to fetch babysitter", err)
		return nil, false
	}
	return &babysitter, true
}

func getBabysitter(c *gin.Context) {
	babysitter, ok := findBabysitter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    babysitter,
	})
}

func createBabysitter(c *gin.Context) {
	var req babysitterRequest
	if !bindJSON(c, &req) {
		return
	}

	babysitter := models.Babysitter{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		IsActive:    true,
	}
	if err := database.DB.WithContext(c.Request.Context()).Create(&babysitter).Error; err != nil {
		internalError(c, "Failed to create babysitter", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Babysitter created successfully",
		"data":    babysitter,
	})
}

func updateBabysitter(c *gin.Context) {
	var req babysitterRequest
	if !bindJSON(c, &req) {
		return
	}
	babysitter, ok := findBabysitter(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{
		"first_name":   req.FirstName,
		"last_name":    req.LastName,
		"phone_number": req.PhoneNumber,
		"email":        req.Email,
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if err := database.DB.WithContext(c.Request.Context()).Model(babysitter).Updates(updates).Error; err != nil {
		internalError(c, "Failed to update babysitter", err)
		return
	}
	database.DB.WithContext(c.Request.Context()).First(babysitter, babysitter.ID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Babysitter updated successfully",
		"data":    babysitter,
	})
}

// deactivateBabysitter hides a babysitter from the directory. Rows are kept
// because schedules reference them.
func deactivateBabysitter(c *gin.Context) {
	babysitter, ok := findBabysitter(c)
	if !ok {
		return
	}

	if err := database.DB.WithContext(c.Request.Context()).Model(babysitter).Update("is_active", false).Error; err != nil {
		internalError(c, "Failed to deactivate babysitter", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Babysitter deactivated",
	})
}
