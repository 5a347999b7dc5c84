package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"daycare-server/config"
	"daycare-server/database"
	"daycare-server/models"
	"daycare-server/utils"
)

func setupAuthTest(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	prevDB, prevCfg := database.DB, config.AppConfig
	database.DB = db
	config.AppConfig = &config.Config{JWT: config.JWTConfig{Secret: "test-secret", ExpiryHours: 1}}
	t.Cleanup(func() {
		database.DB, config.AppConfig = prevDB, prevCfg
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.UserRole, active bool) (models.User, string) {
	t.Helper()
	u := models.User{FullName: email, Email: email, PasswordHash: "x", Role: role, IsActive: true}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	if !active {
		if err := db.Model(&u).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate: %v", err)
		}
	}
	token, _, err := utils.GenerateToken(u.ID, string(u.Role))
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return u, token
}

func newAuthRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetUint("user_id"), "role": c.GetString("role")})
	})
	r.GET("/manage", AuthMiddleware(), RequireRoles(models.RoleManager), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/ws", WebSocketAuthMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	db := setupAuthTest(t)
	r := newAuthRouter()

	_, parentToken := createUser(t, db, "parent@test", models.RoleParent, true)
	_, inactiveToken := createUser(t, db, "gone@test", models.RoleParent, false)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", parentToken, http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"inactive user", "Bearer " + inactiveToken, http.StatusUnauthorized},
		{"valid", "Bearer " + parentToken, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("expected %d got %d: %s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestAuthMiddlewareRejectsTokenForDeletedUser(t *testing.T) {
	setupAuthTest(t)
	r := newAuthRouter()

	token, _, err := utils.GenerateToken(4242, string(models.RoleParent))
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	db := setupAuthTest(t)
	r := newAuthRouter()

	_, parentToken := createUser(t, db, "parent@test", models.RoleParent, true)
	_, managerToken := createUser(t, db, "manager@test", models.RoleManager, true)

	for token, want := range map[string]int{
		parentToken:  http.StatusForbidden,
		managerToken: http.StatusNoContent,
	} {
		req := httptest.NewRequest(http.MethodGet, "/manage", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("expected %d got %d", want, w.Code)
		}
	}
}

func TestWebSocketAuthMiddlewareUsesQueryToken(t *testing.T) {
	db := setupAuthTest(t)
	r := newAuthRouter()
	_, token := createUser(t, db, "staff@test", models.RoleStaff, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", w.Code)
	}
}
