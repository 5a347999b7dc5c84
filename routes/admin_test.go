package routes

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"daycare-server/models"
)

func TestDashboardStats(t *testing.T) {
	s := newTestServer(t)
	parent, parentToken := s.user("parent@test", models.RoleParent)
	_, staffToken := s.user("staff@test", models.RoleStaff)
	_, managerToken := s.user("manager@test", models.RoleManager)
	child := s.child(parent.ID, "Lina")
	s.babysitter("Alice")

	if code := s.do(http.MethodPost, "/api/v1/attendance/check-in", staffToken, gin.H{"childId": child.ID}, nil); code != http.StatusCreated {
		t.Fatalf("check in: expected 201 got %d", code)
	}
	if code := s.do(http.MethodPost, "/api/v1/attendance/check-in", staffToken, gin.H{"childId": child.ID}, nil); code != http.StatusConflict {
		t.Fatalf("second check in: expected 409 got %d", code)
	}
	if code := s.do(http.MethodPost, "/api/v1/incidents", staffToken, gin.H{
		"childId": child.ID, "severity": "low", "description": "Bumped head",
	}, nil); code != http.StatusCreated {
		t.Fatalf("incident: expected 201 got %d", code)
	}

	if code := s.do(http.MethodGet, "/api/v1/admin/dashboard", parentToken, nil, nil); code != http.StatusForbidden {
		t.Fatalf("parent: expected 403 got %d", code)
	}

	var resp struct {
		Data DashboardStats `json:"data"`
	}
	if code := s.do(http.MethodGet, "/api/v1/admin/dashboard", managerToken, nil, &resp); code != http.StatusOK {
		t.Fatalf("manager: expected 200 got %d", code)
	}
	stats := resp.Data
	if stats.Users[models.RoleParent] != 1 || stats.Users[models.RoleStaff] != 1 || stats.Users[models.RoleManager] != 1 {
		t.Fatalf("unexpected user counts %v", stats.Users)
	}
	if stats.Children != 1 || stats.ActiveBabysitters != 1 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	if stats.CheckedInToday != 1 || stats.UnresolvedIncidents != 1 {
		t.Fatalf("expected one open check-in and one incident, got %+v", stats)
	}
	if stats.Payments == nil || len(stats.Payments.ByStatus) != 3 {
		t.Fatalf("expected a payment summary, got %+v", stats.Payments)
	}

	// The parent was told about both events.
	var unread struct {
		Count int64 `json:"count"`
	}
	if code := s.do(http.MethodGet, "/api/v1/notifications/unread-count", parentToken, nil, &unread); code != http.StatusOK {
		t.Fatalf("unread count: %d", code)
	}
	if unread.Count != 2 {
		t.Fatalf("expected 2 unread notifications got %d", unread.Count)
	}
}

func TestDeactivateUser(t *testing.T) {
	s := newTestServer(t)
	parent, parentToken := s.user("parent@test", models.RoleParent)
	manager, managerToken := s.user("manager@test", models.RoleManager)

	path := fmt.Sprintf("/api/v1/admin/users/%d/status", manager.ID)
	if code := s.do(http.MethodPut, path, managerToken, gin.H{"isActive": false}, nil); code != http.StatusBadRequest {
		t.Fatalf("self deactivation: expected 400 got %d", code)
	}

	path = fmt.Sprintf("/api/v1/admin/users/%d/status", parent.ID)
	if code := s.do(http.MethodPut, path, managerToken, gin.H{"isActive": false}, nil); code != http.StatusOK {
		t.Fatalf("deactivate: expected 200 got %d", code)
	}
	if code := s.do(http.MethodGet, "/api/v1/auth/me", parentToken, nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("deactivated user: expected 401 got %d", code)
	}

	var list struct {
		Total int64 `json:"total"`
	}
	if code := s.do(http.MethodGet, "/api/v1/admin/users?role=parent", managerToken, nil, &list); code != http.StatusOK || list.Total != 1 {
		t.Fatalf("list parents: %d, total %d", code, list.Total)
	}
	if code := s.do(http.MethodGet, "/api/v1/admin/users?role=admin", managerToken, nil, nil); code != http.StatusBadRequest {
		t.Fatalf("bad role filter: expected 400 got %d", code)
	}
}

func TestAnnouncementReachesActiveUsersOfRole(t *testing.T) {
	s := newTestServer(t)
	_, parentToken := s.user("parent@test", models.RoleParent)
	s.user("other-parent@test", models.RoleParent)
	_, staffToken := s.user("staff@test", models.RoleStaff)
	_, managerToken := s.user("manager@test", models.RoleManager)

	body := gin.H{"title": "Closed Friday", "body": "The centre is closed for training.", "role": "parent"}
	if code := s.do(http.MethodPost, "/api/v1/notifications/announcements", staffToken, body, nil); code != http.StatusForbidden {
		t.Fatalf("staff: expected 403 got %d", code)
	}

	var sent struct {
		Recipients int `json:"recipients"`
	}
	if code := s.do(http.MethodPost, "/api/v1/notifications/announcements", managerToken, body, &sent); code != http.StatusOK {
		t.Fatalf("manager: expected 200 got %d", code)
	}
	if sent.Recipients != 2 {
		t.Fatalf("expected 2 recipients got %d", sent.Recipients)
	}

	var unread struct {
		Count int64 `json:"count"`
	}
	s.do(http.MethodGet, "/api/v1/notifications/unread-count", parentToken, nil, &unread)
	if unread.Count != 1 {
		t.Fatalf("parent: expected 1 unread got %d", unread.Count)
	}
	s.do(http.MethodGet, "/api/v1/notifications/unread-count", staffToken, nil, &unread)
	if unread.Count != 0 {
		t.Fatalf("staff: expected 0 unread got %d", unread.Count)
	}
}
