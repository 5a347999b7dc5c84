package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"daycare-server/middleware"
	"daycare-server/models"
	"daycare-server/services"
	"daycare-server/utils"
)

type checkInRequest struct {
	ChildID uint   `json:"childId" binding:"required"`
	Notes   string `json:"notes" binding:"max=500"`
}

type checkOutRequest struct {
	Notes string `json:"notes" binding:"max=500"`
}

// RegisterAttendanceRoutes registers check-in and check-out. Staff record
// attendance; parents may read their own child's history.
func RegisterAttendanceRoutes(router *gin.RouterGroup, attendance *services.AttendanceService) {
	group := router.Group("/attendance")
	group.Use(middleware.AuthMiddleware())

	staff := middleware.RequireRoles(models.RoleStaff, models.RoleManager)

	group.POST("/check-in", staff, checkIn(attendance))
	group.POST("/:id/check-out", staff, checkOut(attendance))
	group.GET("/child/:id", childAttendance(attendance))
}

func checkIn(attendance *services.AttendanceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkInRequest
		if !bindJSON(c, &req) {
			return
		}

		record, err := attendance.CheckIn(c.Request.Context(), req.ChildID, c.GetUint("user_id"), req.Notes)
		if err != nil {
			respondServiceError(c, err, "Failed to check in")
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Checked in",
			"data":    record,
		})
	}
}

func checkOut(attendance *services.AttendanceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		var req checkOutRequest
		if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
			return
		}

		record, err := attendance.CheckOut(c.Request.Context(), id, c.GetUint("user_id"), req.Notes)
		if err != nil {
			respondServiceError(c, err, "Failed to check out")
			return
		}
		record.Child = nil

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Checked out",
			"data":    record,
		})
	}
}

func childAttendance(attendance *services.AttendanceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		childID, ok := parseID(c, "id")
		if !ok {
			return
		}
		if _, ok := loadChild(c, childID); !ok {
			return
		}

		var from, to time.Time
		var err error
		if v := c.Query("from"); v != "" {
			if from, err = utils.ParseDate(v); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":  "Invalid request",
					"fields": gin.H{"from": "must be a date formatted as YYYY-MM-DD"},
				})
				return
			}
		}
		if v := c.Query("to"); v != "" {
			if to, err = utils.ParseDate(v); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":  "Invalid request",
					"fields": gin.H{"to": "must be a date formatted as YYYY-MM-DD"},
				})
				return
			}
		}

		records, err := attendance.ForChild(c.Request.Context(), childID, from, to)
		if err != nil {
			internalError(c, "Failed to fetch attendance", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    records,
			"count":   len(records),
		})
	}
}
