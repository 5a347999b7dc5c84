package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"daycare-server/models"
)

var (
	ErrIncidentNotFound = errors.New("incident not found")
	ErrIncidentResolved = errors.New("incident is already resolved")
	ErrUnknownSeverity  = errors.New("unknown incident severity")
)

type IncidentService struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

func NewIncidentService(db *gorm.DB, notifier Notifier) *IncidentService {
	return &IncidentService{db: db, notifier: notifier, now: time.Now}
}

type ReportIncidentInput struct {
	ChildID     uint
	ReportedBy  uint
	Severity    models.IncidentSeverity
	Description string
	ActionTaken string
	OccurredAt  time.Time
}

// Report stores an incident and tells the child's parent about it.
func (s *IncidentService) Report(ctx context.Context, in ReportIncidentInput) (*models.Incident, error) {
	if !in.Severity.Valid() {
		return nil, ErrUnknownSeverity
	}

	var child models.Child
	if err := s.db.WithContext(ctx).First(&child, in.ChildID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChildNotFound
		}
		return nil, fmt.Errorf("lookup child: %w", err)
	}

	occurredAt := in.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.now()
	}

	incident := &models.Incident{
		ChildID:     in.ChildID,
		ReportedBy:  in.ReportedBy,
		Severity:    in.Severity,
		Description: in.Description,
		ActionTaken: in.ActionTaken,
		OccurredAt:  occurredAt,
	}
	if err := s.db.WithContext(ctx).Create(incident).Error; err != nil {
		return nil, fmt.Errorf("create incident: %w", err)
	}

	zap.L().Info("incident reported",
		zap.Uint("incident_id", incident.ID),
		zap.Uint("child_id", child.ID),
		zap.String("severity", string(incident.Severity)))

	notifySafe(ctx, s.notifier, child.ParentID, models.NotificationIncidentReported,
		fmt.Sprintf("Incident report (%s)", incident.Severity),
		fmt.Sprintf("An incident involving %s was reported: %s", child.FirstName, incident.Description),
		fields{"childId": child.ID, "incidentId": incident.ID, "severity": incident.Severity})

	return incident, nil
}

// Resolve closes an open incident.
func (s *IncidentService) Resolve(ctx context.Context, id uint, notes string) (*models.Incident, error) {
	var incident models.Incident
	if err := s.db.WithContext(ctx).First(&incident, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIncidentNotFound
		}
		return nil, err
	}
	if incident.Resolved {
		return nil, ErrIncidentResolved
	}

	now := s.now()
	res := s.db.WithContext(ctx).Model(&models.Incident{}).
		Where("id = ? AND resolved = ?", id, false).
		Updates(map[string]interface{}{
			"resolved":         true,
			"resolved_at":      now,
			"resolution_notes": notes,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("resolve incident: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrIncidentResolved
	}

	incident.Resolved = true
	incident.ResolvedAt = &now
	incident.ResolutionNotes = notes
	return &incident, nil
}

func (s *IncidentService) ForChild(ctx context.Context, childID uint) ([]models.Incident, error) {
	var incidents []models.Incident
	err := s.db.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("occurred_at DESC").
		Find(&incidents).Error
	return incidents, err
}
