package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"daycare-server/media"
	"daycare-server/middleware"
	"daycare-server/services"
	ws "daycare-server/websocket"
)

// Deps carries the long-lived services the handlers need.
type Deps struct {
	JWT        *services.JWTService
	Scheduling *services.SchedulingService
	Attendance *services.AttendanceService
	Incidents  *services.IncidentService
	Notifier   services.Notifier
	Sockets    *ws.NotificationHandler
	Uploader   media.Uploader
}

// RegisterRoutes mounts every API route under /api/v1 plus the health check.
func RegisterRoutes(router *gin.Engine, d Deps) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Daycare server is running",
			"time":    time.Now().UTC(),
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		RegisterAuthRoutes(apiV1, d.JWT)
		RegisterChildRoutes(apiV1)
		RegisterChildMediaRoutes(apiV1, d.Uploader)
		RegisterBabysitterRoutes(apiV1)
		RegisterScheduleRoutes(apiV1, d.Scheduling)
		RegisterAttendanceRoutes(apiV1, d.Attendance)
		RegisterIncidentRoutes(apiV1, d.Incidents)
		RegisterNotificationRoutes(apiV1, d.Notifier)
		RegisterAdminRoutes(apiV1, d.JWT, d.Scheduling)

		if d.Sockets != nil {
			apiV1.GET("/ws/notifications", middleware.WebSocketAuthMiddleware(), d.Sockets.Handle)
		}
	}
}
