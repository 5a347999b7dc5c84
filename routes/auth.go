package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"daycare-server/database"
	"daycare-server/middleware"
	"daycare-server/models"
	"daycare-server/services"
)

type signUpRequest struct {
	FullName        string `json:"fullName" binding:"required,min=2,max=100"`
	Email           string `json:"email" binding:"required,email"`
	PhoneNumber     string `json:"phoneNumber" binding:"omitempty,max=20"`
	Password        string `json:"password" binding:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type createStaffRequest struct {
	FullName    string `json:"fullName" binding:"required,min=2,max=100"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,max=20"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	Role        string `json:"role" binding:"required,oneof=staff manager"`
}

// RegisterAuthRoutes registers account and token endpoints. Self signup always
// creates a parent; managers create staff accounts.
func RegisterAuthRoutes(router *gin.RouterGroup, jwtService *services.JWTService) {
	auth := router.Group("/auth")

	auth.POST("/signup", signUp(jwtService))
	auth.POST("/signin", signIn(jwtService))
	auth.POST("/refresh", refreshTokens(jwtService))
	auth.POST("/logout", middleware.AuthMiddleware(), logout(jwtService))
	auth.GET("/me", middleware.AuthMiddleware(), currentUser)
	auth.POST("/staff", middleware.AuthMiddleware(), middleware.RequireRoles(models.RoleManager), createStaff(jwtService))
}

func signUp(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signUpRequest
		if !bindJSON(c, &req) {
			return
		}

		if req.Password != req.ConfirmPassword {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "Invalid request",
				"fields": gin.H{"confirmPassword": "does not match password"},
			})
			return
		}
		if ok, problems := middleware.ValidatePasswordStrength(req.Password); !ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Weak password",
				"message": "Password does not meet security requirements",
				"details": problems,
			})
			return
		}

		user, ok := createUser(c, jwtService, req.FullName, req.Email, req.PhoneNumber, req.Password, models.RoleParent)
		if !ok {
			return
		}

		tokenPair, err := jwtService.GenerateTokenPair(c.Request.Context(), user, c.GetHeader("User-Agent"), c.ClientIP())
		if err != nil {
			internalError(c, "Failed to generate authentication tokens", err)
			return
		}

		logFor(c).Info("parent account created", zap.Uint("user_id", user.ID))

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Account created successfully",
			"data": gin.H{
				"user":   user,
				"tokens": tokenPair,
			},
		})
	}
}

func createStaff(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createStaffRequest
		if !bindJSON(c, &req) {
			return
		}

		user, ok := createUser(c, jwtService, req.FullName, req.Email, req.PhoneNumber, req.Password, models.UserRole(req.Role))
		if !ok {
			return
		}

		logFor(c).Info("staff account created",
			zap.Uint("user_id", user.ID),
			zap.String("role", string(user.Role)),
			zap.Uint("created_by", c.GetUint("user_id")))

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Account created successfully",
			"data":    user,
		})
	}
}

// createUser stores a new account, answering 409 when the email is taken.
func createUser(c *gin.Context, jwtService *services.JWTService, fullName, email, phone, password string, role models.UserRole) (*models.User, bool) {
	email = strings.ToLower(strings.TrimSpace(email))

	var existing models.User
	err := database.DB.WithContext(c.Request.Context()).Where("email = ?", email).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "User already exists",
			"message": "An account with this email already exists",
		})
		return nil, false
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		internalError(c, "Failed to create account", err)
		return nil, false
	}

	hashedPassword, err := jwtService.HashPassword(password)
	if err != nil {
		internalError(c, "Failed to process password", err)
		return nil, false
	}

	user := &models.User{
		FullName:     strings.TrimSpace(fullName),
		Email:        email,
		PhoneNumber:  strings.TrimSpace(phone),
		PasswordHash: hashedPassword,
		Role:         role,
		IsActive:     true,
	}
	if err := database.DB.WithContext(c.Request.Context()).Create(user).Error; err != nil {
		internalError(c, "Failed to create account", err)
		return nil, false
	}
	return user, true
}

func signIn(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signInRequest
		if !bindJSON(c, &req) {
			return
		}

		var user models.User
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if err := database.DB.WithContext(c.Request.Context()).Where("email = ?", email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid credentials",
				"message": "Email or password is incorrect",
			})
			return
		}

		if !user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Account deactivated",
				"message": "Your account has been deactivated",
			})
			return
		}

		if !jwtService.CheckPasswordHash(req.Password, user.PasswordHash) {
			logFor(c).Info("failed sign in", zap.Uint("user_id", user.ID))
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid credentials",
				"message": "Email or password is incorrect",
			})
			return
		}

		tokenPair, err := jwtService.GenerateTokenPair(c.Request.Context(), &user, c.GetHeader("User-Agent"), c.ClientIP())
		if err != nil {
			internalError(c, "Failed to generate authentication tokens", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Sign in successful",
			"data": gin.H{
				"user":   user,
				"tokens": tokenPair,
			},
		})
	}
}

func refreshTokens(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req refreshRequest
		if !bindJSON(c, &req) {
			return
		}

		tokenPair, err := jwtService.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
		if err != nil {
			if !errors.Is(err, services.ErrInvalidRefreshToken) {
				logFor(c).Error("token refresh failed", zap.Error(err))
			}
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid refresh token",
				"message": "Refresh token is invalid or expired",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Token refreshed successfully",
			"data": gin.H{
				"tokens": tokenPair,
			},
		})
	}
}

// logout revokes the given refresh token, or every token of the user when
// the body names none.
func logout(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
			if err := jwtService.RevokeRefreshToken(c.Request.Context(), req.RefreshToken); err != nil {
				logFor(c).Warn("failed to revoke refresh token", zap.Error(err))
			}
		} else if err := jwtService.RevokeAllUserTokens(c.Request.Context(), userID); err != nil {
			logFor(c).Warn("failed to revoke refresh tokens", zap.Uint("user_id", userID), zap.Error(err))
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Signed out",
		})
	}
}

func currentUser(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var children []models.Child
	if user.IsParent() {
		if err := database.DB.WithContext(c.Request.Context()).Where("parent_id = ?", user.ID).Order("first_name").Find(&children).Error; err != nil {
			internalError(c, "Failed to load children", err)
			return
		}
	}
	user.Children = children

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"user": user,
		},
	})
}
