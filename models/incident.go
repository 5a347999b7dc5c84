package models

import "time"

type IncidentSeverity string

const (
	SeverityLow    IncidentSeverity = "low"
	SeverityMedium IncidentSeverity = "medium"
	SeverityHigh   IncidentSeverity = "high"
)

func (s IncidentSeverity) Valid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

type Incident struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	ChildID         uint             `json:"childId" gorm:"not null;index"`
	ReportedBy      uint             `json:"reportedBy" gorm:"not null"`
	Severity        IncidentSeverity `json:"severity" gorm:"type:varchar(10);not null;check:severity IN ('low','medium','high')"`
	Description     string           `json:"description" gorm:"type:text;not null"`
	ActionTaken     string           `json:"actionTaken" gorm:"type:text"`
	OccurredAt      time.Time        `json:"occurredAt" gorm:"not null"`
	Resolved        bool             `json:"resolved" gorm:"default:false"`
	ResolvedAt      *time.Time       `json:"resolvedAt"`
	ResolutionNotes string           `json:"resolutionNotes" gorm:"type:text"`
	CreatedAt       time.Time        `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt       time.Time        `json:"updatedAt" gorm:"autoUpdateTime"`

	Child *Child `json:"child,omitempty" gorm:"foreignKey:ChildID"`
}

func (Incident) TableName() string {
	return "incidents"
}
