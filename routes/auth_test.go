package routes

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"daycare-server/models"
	"daycare-server/services"
)

func TestSignUpSignInAndMe(t *testing.T) {
	s := newTestServer(t)

	signup := gin.H{
		"fullName":        "Pat Parent",
		"email":           "Pat@Example.com",
		"password":        "Secret123",
		"confirmPassword": "Secret123",
	}
	var created struct {
		Data struct {
			User   models.User        `json:"user"`
			Tokens services.TokenPair `json:"tokens"`
		} `json:"data"`
	}
	if code := s.do(http.MethodPost, "/api/v1/auth/signup", "", signup, &created); code != http.StatusCreated {
		t.Fatalf("signup: expected 201 got %d", code)
	}
	if created.Data.User.Role != models.RoleParent || created.Data.User.Email != "pat@example.com" {
		t.Fatalf("unexpected user %+v", created.Data.User)
	}
	if created.Data.Tokens.AccessToken == "" || created.Data.Tokens.RefreshToken == "" {
		t.Fatalf("expected tokens")
	}

	if code := s.do(http.MethodPost, "/api/v1/auth/signup", "", signup, nil); code != http.StatusConflict {
		t.Fatalf("duplicate signup: expected 409 got %d", code)
	}

	weak := gin.H{"fullName": "Weak", "email": "weak@example.com", "password": "password", "confirmPassword": "password"}
	if code := s.do(http.MethodPost, "/api/v1/auth/signup", "", weak, nil); code != http.StatusBadRequest {
		t.Fatalf("weak password: expected 400 got %d", code)
	}

	if code := s.do(http.MethodPost, "/api/v1/auth/signin", "", gin.H{"email": "pat@example.com", "password": "nope"}, nil); code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401 got %d", code)
	}

	var signedIn struct {
		Data struct {
			Tokens services.TokenPair `json:"tokens"`
		} `json:"data"`
	}
	if code := s.do(http.MethodPost, "/api/v1/auth/signin", "", gin.H{"email": "pat@example.com", "password": "Secret123"}, &signedIn); code != http.StatusOK {
		t.Fatalf("signin: expected 200 got %d", code)
	}
	if signedIn.Data.Tokens.AccessToken == "" {
		t.Fatalf("expected an access token on sign in")
	}

	if code := s.do(http.MethodGet, "/api/v1/auth/me", signedIn.Data.Tokens.AccessToken, nil, nil); code != http.StatusOK {
		t.Fatalf("me: expected 200 got %d", code)
	}

	var refreshed struct {
		Data struct {
			Tokens services.TokenPair `json:"tokens"`
		} `json:"data"`
	}
	if code := s.do(http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refreshToken": signedIn.Data.Tokens.RefreshToken}, &refreshed); code != http.StatusOK {
		t.Fatalf("refresh: expected 200 got %d", code)
	}
	if refreshed.Data.Tokens.RefreshToken != signedIn.Data.Tokens.RefreshToken {
		t.Fatalf("expected the refresh token to be kept")
	}
}

func TestCreateStaffIsManagerOnly(t *testing.T) {
	s := newTestServer(t)
	_, parentToken := s.user("parent@test", models.RoleParent)
	_, managerToken := s.user("manager@test", models.RoleManager)

	body := gin.H{"fullName": "Sam Staff", "email": "sam@test.com", "password": "Secret123", "role": "staff"}
	if code := s.do(http.MethodPost, "/api/v1/auth/staff", parentToken, body, nil); code != http.StatusForbidden {
		t.Fatalf("parent: expected 403 got %d", code)
	}
	if code := s.do(http.MethodPost, "/api/v1/auth/staff", managerToken, body, nil); code != http.StatusCreated {
		t.Fatalf("manager: expected 201 got %d", code)
	}
}
