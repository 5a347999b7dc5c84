package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"daycare-server/database"
	"daycare-server/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique in-memory database per test.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func createParent(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{FullName: "Parent " + email, Email: email, PasswordHash: "x", Role: models.RoleParent, IsActive: true}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("parent: %v", err)
	}
	return u
}

func createChild(t *testing.T, db *gorm.DB, parentID uint, firstName string) models.Child {
	t.Helper()
	c := models.Child{ParentID: parentID, FirstName: firstName, LastName: "Test"}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("child: %v", err)
	}
	return c
}

func createBabysitter(t *testing.T, db *gorm.DB, firstName string) models.Babysitter {
	t.Helper()
	b := models.Babysitter{FirstName: firstName, LastName: "Sitter", IsActive: true}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("babysitter: %v", err)
	}
	return b
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

type sentNotification struct {
	UserID uint
	Kind   string
	Title  string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(_ context.Context, userID uint, kind, title, _ string, _ interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{UserID: userID, Kind: kind, Title: title})
	return nil
}

func (n *recordingNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.Kind)
	}
	return out
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

// memorySummaryCache is an in-process stand-in for the Redis cache.
type memorySummaryCache struct {
	summary       *models.PaymentSummary
	invalidations int
}

func (c *memorySummaryCache) Get(context.Context) (*models.PaymentSummary, bool, error) {
	if c.summary == nil {
		return nil, false, nil
	}
	return c.summary, true, nil
}

func (c *memorySummaryCache) Set(_ context.Context, s *models.PaymentSummary) error {
	c.summary = s
	return nil
}

func (c *memorySummaryCache) Invalidate(context.Context) error {
	c.summary = nil
	c.invalidations++
	return nil
}
