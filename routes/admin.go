package routes

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"daycare-server/database"
	"daycare-server/middleware"
	"daycare-server/models"
	"daycare-server/services"
	"daycare-server/utils"
)

type userStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// DashboardStats is the manager's overview of the daycare.
type DashboardStats struct {
	Users               map[models.UserRole]int64       `json:"users"`
	Children            int64                           `json:"children"`
	ActiveBabysitters   int64                           `json:"activeBabysitters"`
	Schedules           map[models.ScheduleStatus]int64 `json:"schedules"`
	CheckedInToday      int64                           `json:"checkedInToday"`
	UnresolvedIncidents int64                           `json:"unresolvedIncidents"`
	Payments            *models.PaymentSummary          `json:"payments"`
}

// RegisterAdminRoutes registers the manager-only account administration and
// dashboard endpoints.
func RegisterAdminRoutes(router *gin.RouterGroup, jwtService *services.JWTService, scheduling *services.SchedulingService) {
	group := router.Group("/admin")
	group.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.RoleManager))

	group.GET("/users", GetAllUsers)
	group.GET("/users/:id", GetUserByID)
	group.PUT("/users/:id/status", UpdateUserStatus(jwtService))
	group.GET("/dashboard", GetDashboardStats(scheduling))
}

// GetAllUsers returns users newest first, paginated, optionally by role.
func GetAllUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	query := database.DB.WithContext(c.Request.Context()).Model(&models.User{})
	if role := models.UserRole(c.Query("role")); role != "" {
		if !role.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "Invalid request",
				"fields": gin.H{"role": "must be one of: parent staff manager"},
			})
			return
		}
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		internalError(c, "Failed to count users", err)
		return
	}

	var users []models.User
	if err := query.Offset((page - 1) * limit).Limit(limit).Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		internalError(c, "Failed to fetch users", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

func GetUserByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, ok := loadUser(c, id)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// UpdateUserStatus activates or deactivates an account. Deactivated users
// lose their refresh tokens and are rejected by the auth middleware.
func UpdateUserStatus(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		var req userStatusRequest
		if !bindJSON(c, &req) {
			return
		}

		managerID := c.GetUint("user_id")
		if id == managerID && !*req.IsActive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot deactivate your own account"})
			return
		}

		user, ok := loadUser(c, id)
		if !ok {
			return
		}

		ctx := c.Request.Context()
		if err := database.DB.WithContext(ctx).Model(user).Update("is_active", *req.IsActive).Error; err != nil {
			internalError(c, "Failed to update user status", err)
			return
		}
		if !*req.IsActive {
			if err := jwtService.RevokeAllUserTokens(ctx, user.ID); err != nil {
				logFor(c).Warn("revoke tokens failed", zap.Uint("user_id", user.ID), zap.Error(err))
			}
		}

		logFor(c).Info("user status updated",
			zap.Uint("user_id", user.ID),
			zap.Bool("is_active", *req.IsActive),
			zap.Uint("manager_id", managerID))

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "User status updated successfully",
			"data":    user,
		})
	}
}

// GetDashboardStats aggregates the daycare's current counts.
func GetDashboardStats(scheduling *services.SchedulingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		db := database.DB.WithContext(ctx)

		stats := DashboardStats{
			Users:     make(map[models.UserRole]int64),
			Schedules: make(map[models.ScheduleStatus]int64),
		}
		for _, role := range []models.UserRole{models.RoleParent, models.RoleStaff, models.RoleManager} {
			stats.Users[role] = 0
		}
		for _, status := range []models.ScheduleStatus{models.ScheduleStatusActive, models.ScheduleStatusCompleted, models.ScheduleStatusCancelled} {
			stats.Schedules[status] = 0
		}

		var roleRows []struct {
			Role  models.UserRole
			Count int64
		}
		if err := db.Model(&models.User{}).Select("role, COUNT(*) AS count").Group("role").Scan(&roleRows).Error; err != nil {
			internalError(c, "Failed to load dashboard", err)
			return
		}
		for _, r := range roleRows {
			stats.Users[r.Role] = r.Count
		}

		var statusRows []struct {
			Status models.ScheduleStatus
			Count  int64
		}
		if err := db.Model(&models.Schedule{}).Select("status, COUNT(*) AS count").Group("status").Scan(&statusRows).Error; err != nil {
			internalError(c, "Failed to load dashboard", err)
			return
		}
		for _, r := range statusRows {
			stats.Schedules[r.Status] = r.Count
		}

		today := datatypes.Date(utils.Midnight(time.Now().UTC()))
		counts := []struct {
			dst   *int64
			query *gorm.DB
		}{
			{&stats.Children, db.Model(&models.Child{})},
			{&stats.ActiveBabysitters, db.Model(&models.Babysitter{}).Where("is_active = ?", true)},
			{&stats.CheckedInToday, db.Model(&models.Attendance{}).Where("day = ? AND check_out_at IS NULL", today)},
			{&stats.UnresolvedIncidents, db.Model(&models.Incident{}).Where("resolved = ?", false)},
		}
		for _, q := range counts {
			if err := q.query.Count(q.dst).Error; err != nil {
				internalError(c, "Failed to load dashboard", err)
				return
			}
		}

		summary, err := scheduling.PaymentSummary(ctx)
		if err != nil {
			internalError(c, "Failed to load dashboard", err)
			return
		}
		stats.Payments = summary

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    stats,
		})
	}
}

func loadUser(c *gin.Context, id uint) (*models.User, bool) {
	var user models.User
	err := database.DB.WithContext(c.Request.Context()).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, false
	}
	if err != nil {
		internalError(c, "Failed to fetch user", err)
		return nil, false
	}
	return &user, true
}
