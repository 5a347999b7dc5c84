package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"daycare-server/models"
)

func TestReportAndResolveIncident(t *testing.T) {
	db := setupTestDB(t)
	notifier := &recordingNotifier{}
	svc := NewIncidentService(db, notifier)
	now := time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC)
	svc.now = fixedClock(now)
	ctx := context.Background()

	parent := createParent(t, db, "parent@test")
	child := createChild(t, db, parent.ID, "Lina")

	incident, err := svc.Report(ctx, ReportIncidentInput{
		ChildID:     child.ID,
		ReportedBy:  3,
		Severity:    models.SeverityMedium,
		Description: "Scraped knee in the playground",
		ActionTaken: "Cleaned and bandaged",
	})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !incident.OccurredAt.Equal(now) {
		t.Fatalf("expected occurredAt to default to now, got %s", incident.OccurredAt)
	}
	if got := notifier.kinds(); len(got) != 1 || got[0] != models.NotificationIncidentReported {
		t.Fatalf("unexpected notifications %v", got)
	}
	if notifier.sent[0].UserID != parent.ID {
		t.Fatalf("expected parent to be notified")
	}

	resolved, err := svc.Resolve(ctx, incident.ID, "Parent informed at pickup")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !resolved.Resolved || resolved.ResolvedAt == nil {
		t.Fatalf("expected resolved incident, got %+v", resolved)
	}

	if _, err := svc.Resolve(ctx, incident.ID, "again"); !errors.Is(err, ErrIncidentResolved) {
		t.Fatalf("expected ErrIncidentResolved got %v", err)
	}
	if _, err := svc.Resolve(ctx, 999, "x"); !errors.Is(err, ErrIncidentNotFound) {
		t.Fatalf("expected ErrIncidentNotFound got %v", err)
	}

	list, err := svc.ForChild(ctx, child.ID)
	if err != nil {
		t.Fatalf("for child: %v", err)
	}
	if len(list) != 1 || !list[0].Resolved {
		t.Fatalf("unexpected incidents %+v", list)
	}
}

func TestReportIncidentValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewIncidentService(db, nil)
	ctx := context.Background()

	if _, err := svc.Report(ctx, ReportIncidentInput{ChildID: 1, Severity: "critical", Description: "x"}); !errors.Is(err, ErrUnknownSeverity) {
		t.Fatalf("expected ErrUnknownSeverity got %v", err)
	}
	if _, err := svc.Report(ctx, ReportIncidentInput{ChildID: 404, Severity: models.SeverityLow, Description: "x"}); !errors.Is(err, ErrChildNotFound) {
		t.Fatalf("expected ErrChildNotFound got %v", err)
	}
}
