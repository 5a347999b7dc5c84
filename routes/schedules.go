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
	"daycare-server/services"
	"daycare-server/utils"
)

type createScheduleRequest struct {
	ChildID       uint   `json:"childId" binding:"required"`
	BabysitterID  uint   `json:"babysitterId" binding:"required"`
	StartDate     string `json:"startDate" binding:"required"`
	EndDate       string `json:"endDate" binding:"required"`
	SessionType   string `json:"sessionType" binding:"required,oneof=half-day full-day"`
	PaymentMethod string `json:"paymentMethod" binding:"required,oneof=cash mobile_money bank_transfer"`
}

type quoteRequest struct {
	StartDate   string `form:"startDate" binding:"required"`
	EndDate     string `form:"endDate" binding:"required"`
	SessionType string `form:"sessionType" binding:"required,oneof=half-day full-day"`
}

type scheduleStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active completed cancelled"`
}

type paymentStatusRequest struct {
	Status               string  `json:"status" binding:"required,oneof=pending paid cancelled"`
	TransactionReference *string `json:"transactionReference" binding:"omitempty,max=100"`
}

// RegisterScheduleRoutes mounts booking, pricing and payment endpoints.
func RegisterScheduleRoutes(router *gin.RouterGroup, scheduling *services.SchedulingService) {
	schedules := router.Group("/schedules")
	schedules.Use(middleware.AuthMiddleware())

	staff := middleware.RequireRoles(models.RoleStaff, models.RoleManager)

	schedules.GET("/quote", quoteSchedule)
	schedules.GET("/payments/summary", middleware.RequireRoles(models.RoleManager), paymentSummary(scheduling))

	schedules.POST("", createSchedule(scheduling))
	schedules.GET("", listSchedules(scheduling))
	schedules.GET("/child/:id", listChildSchedules(scheduling))
	schedules.GET("/babysitter/:id", staff, listBabysitterSchedules(scheduling))
	schedules.GET("/:id", getSchedule(scheduling))
	schedules.PUT("/:id/status", updateScheduleStatus(scheduling))
	schedules.PUT("/:id/payment", staff, updatePaymentStatus(scheduling))
}

// parseDates reads both bounds of a range, answering 400 on malformed dates.
// Ordering is checked by the calculator.
func parseDates(c *gin.Context, start, end string) (time.Time, time.Time, bool) {
	fields := gin.H{}
	startDate, err := utils.ParseDate(start)
	if err != nil {
		fields["startDate"] = "must be a date formatted as YYYY-MM-DD"
	}
	endDate, err := utils.ParseDate(end)
	if err != nil {
		fields["endDate"] = "must be a date formatted as YYYY-MM-DD"
	}
	if len(fields) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Invalid request",
			"fields": fields,
		})
		return time.Time{}, time.Time{}, false
	}
	return startDate, endDate, true
}

func quoteSchedule(c *gin.Context) {
	var req quoteRequest
	if !bindQuery(c, &req) {
		return
	}

	start, end, ok := parseDates(c, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	quote, err := services.CalculateQuote(start, end, models.SessionType(req.SessionType))
	if err != nil {
		respondServiceError(c, err, "Failed to price schedule")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    quote,
	})
}

func createSchedule(scheduling *services.SchedulingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createScheduleRequest
		if !bindJSON(c, &req) {
			return
		}

		start, end, ok := parseDates(c, req.StartDate, req.EndDate)
		if !ok {
			return
		}

		user, _ := middleware.CurrentUser(c)
		if user.IsParent() && !ownsChild(c, user, req.ChildID) {
			return
		}

		schedule, err := scheduling.CreateSchedule(c.Request.Context(), services.CreateScheduleInput{
			ChildID:       req.ChildID,
			BabysitterID:  req.BabysitterID,
			StartDate:     start,
			EndDate:       end,
			SessionType:   models.SessionType(req.SessionType),
			PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		})
		if err != nil {
			respondServiceError(c, err, "Error creating schedule")
			return
		}

		logFor(c).Info("schedule booked",
			zap.Uint("schedule_id", schedule.ID),
			zap.Uint("booked_by", user.ID))

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Schedule created successfully",
			"data":    schedule.View(),
		})
	}
}

func listSchedules(scheduling *services.SchedulingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := services.ScheduleFilter{}
		if status := c.Query("status"); status != "" {
			if !models.ScheduleStatus(status).Valid() {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":  "Invalid request",
					"fields": gin.H{"status": "must be one of: active completed cancelled"},
				})
				return
			}
			filter.Status = models.ScheduleStatus(status)
		}

		user, _ := middleware.CurrentUser(c)
		if user.IsParent() {
			filter.ParentID = user.ID
		}

		respondScheduleList(c, scheduling, filter)
	}
}

func listChildSchedules(scheduling *services.SchedulingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		childID, ok := parseID(c, "id")
		if !ok {
			return
		}

		user, _ := middleware.CurrentUser(c)
		if user.IsParent() && !ownsChild(c, user, childID) {
			return
		}

		respondScheduleList(c, scheduling, services.ScheduleFilter{ChildID: childID})
	}
}

func listBabysitterSchedules(scheduling *services.SchedulingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		babysitterID, ok := parseID(c, "id")
		if !ok {
			return
		}
		respondScheduleList(c, scheduling, services.ScheduleFilter{BabysitterID: babysitterID})
	}
}

func respondScheduleList(c *gin.Context, scheduling *services.SchedulingService, filter services.ScheduleFilter) {
	views, err := scheduling.ListSchedules(c.Request.Context(), filter)
	if err != nil {
		internalError(c, "Failed to fetch schedules", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    views,
		"count":   len(views),
	})
}

func getSchedule(scheduling *services.SchedulingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		schedule, err := scheduling.GetSchedule(c.Request.Context(), id)
		if err != nil {
			respondServiceError(c, err, "Failed to fetch schedule")
			return
		}

		user, _ := middleware.CurrentUser(c)
		if user.IsParent() && (schedule.Child == nil || schedule.Child.ParentID != user.ID) {
			c.JSON(http.StatusNotFound, gin.H{"error": services.ErrScheduleNotFound.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    schedule.View(),
		})
	}
}

// updateScheduleStatus lets staff move a schedule through its lifecycle.
// Parents may only cancel their own child's bookings.
func updateScheduleStatus(scheduling *services.SchedulingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		var req scheduleStatusRequest
		if !bindJSON(c, &req) {
			return
		}
		status := models.ScheduleStatus(req.Status)

		user, _ := middleware.CurrentUser(c)
		if user.IsParent() {
			if status != models.ScheduleStatusCancelled {
				c.JSON(http.StatusForbidden, gin.H{
					"error":   "Forbidden",
					"message": "Parents can only cancel bookings",
				})
				return
			}
			schedule, err := scheduling.GetSchedule(c.Request.Context(), id)
			if err != nil {
				respondServiceError(c, err, "Failed to update schedule status")
				return
			}
			if !ownsChild(c, user, schedule.ChildID) {
				return
			}
		}

		schedule, err := scheduling.UpdateScheduleStatus(c.Request.Context(), id, status)
		if err != nil {
			respondServiceError(c, err, "Failed to update schedule status")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Schedule status updated",
			"data":    schedule.View(),
		})
	}
}

func updatePaymentStatus(scheduling *services.SchedulingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		var req paymentStatusRequest
		if !bindJSON(c, &req) {
			return
		}

		payment, err := scheduling.UpdatePaymentStatus(c.Request.Context(), id, models.PaymentStatus(req.Status), req.TransactionReference)
		if err != nil {
			respondServiceError(c, err, "Failed to update payment status")
			return
		}

		logFor(c).Info("payment status updated",
			zap.Uint("payment_id", payment.ID),
			zap.String("status", string(payment.Status)))

		payment.Schedule = nil
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Payment status updated",
			"data":    payment,
		})
	}
}

func paymentSummary(scheduling *services.SchedulingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := scheduling.PaymentSummary(c.Request.Context())
		if err != nil {
			internalError(c, "Failed to build payment summary", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    summary,
		})
	}
}

// ownsChild answers 404 when the child does not exist and 403 when it belongs
// to another parent.
func ownsChild(c *gin.Context, user models.User, childID uint) bool {
	var child models.Child
	err := database.DB.WithContext(c.Request.Context()).Select("id", "parent_id").First(&child, childID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": services.ErrChildNotFound.Error()})
		return false
	}
	if err != nil {
		internalError(c, "Failed to load child", err)
		return false
	}
	if child.ParentID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "This child is not registered to your account",
		})
		return false
	}
	return true
}
