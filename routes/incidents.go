package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"daycare-server/middleware"
	"daycare-server/models"
	"daycare-server/services"
)

type reportIncidentRequest struct {
	ChildID     uint       `json:"childId" binding:"required"`
	Severity    string     `json:"severity" binding:"required,oneof=low medium high"`
	Description string     `json:"description" binding:"required,max=2000"`
	ActionTaken string     `json:"actionTaken" binding:"max=2000"`
	OccurredAt  *time.Time `json:"occurredAt"`
}

type resolveIncidentRequest struct {
	ResolutionNotes string `json:"resolutionNotes" binding:"required,max=2000"`
}

func RegisterIncidentRoutes(router *gin.RouterGroup, incidents *services.IncidentService) {
	group := router.Group("/incidents")
	group.Use(middleware.AuthMiddleware())

	staff := middleware.RequireRoles(models.RoleStaff, models.RoleManager)

	group.POST("", staff, reportIncident(incidents))
	group.GET("/child/:id", childIncidents(incidents))
	group.PUT("/:id/resolve", staff, resolveIncident(incidents))
}

func reportIncident(incidents *services.IncidentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reportIncidentRequest
		if !bindJSON(c, &req) {
			return
		}

		in := services.ReportIncidentInput{
			ChildID:     req.ChildID,
			ReportedBy:  c.GetUint("user_id"),
			Severity:    models.IncidentSeverity(req.Severity),
			Description: req.Description,
			ActionTaken: req.ActionTaken,
		}
		if req.OccurredAt != nil {
			in.OccurredAt = *req.OccurredAt
		}

		incident, err := incidents.Report(c.Request.Context(), in)
		if err != nil {
			respondServiceError(c, err, "Failed to report incident")
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Incident reported",
			"data":    incident,
		})
	}
}

func childIncidents(incidents *services.IncidentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		childID, ok := parseID(c, "id")
		if !ok {
			return
		}
		if _, ok := loadChild(c, childID); !ok {
			return
		}

		list, err := incidents.ForChild(c.Request.Context(), childID)
		if err != nil {
			internalError(c, "Failed to fetch incidents", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    list,
			"count":   len(list),
		})
	}
}

func resolveIncident(incidents *services.IncidentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		var req resolveIncidentRequest
		if !bindJSON(c, &req) {
			return
		}

		incident, err := incidents.Resolve(c.Request.Context(), id, req.ResolutionNotes)
		if err != nil {
			respondServiceError(c, err, "Failed to resolve incident")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Incident resolved",
			"data":    incident,
		})
	}
}
