package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/asthar/asthar-backend/internal/app/model"
	"github.com/asthar/asthar-backend/internal/app/service"
	apperrors "github.com/asthar/asthar-backend/internal/errors"
	"github.com/asthar/asthar-backend/internal/middleware"
	"github.com/asthar/asthar-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,trimmed_email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,trimmed_email"`
	Password string `json:"password" binding:"required"`
}

func userBody(user *model.User) gin.H {
	return gin.H{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	}
}

func sessionBody(result *service.AuthResult) gin.H {
	return gin.H{
		"user":      userBody(result.User),
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
	}
}

// Register handles user registration
// POST /api/v1/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindError(c, err)
		return
	}

	result, err := ctrl.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			log.Warn("Registration failed: email already exists", map[string]interface{}{
				"email": req.Email,
			})
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "An account with this email already exists")
			return
		}
		if errors.Is(err, util.ErrPasswordTooLong) {
			apperrors.RespondWithValidationError(c, map[string]string{
				"password": fmt.Sprintf("must be at most %d bytes", util.MaxPasswordBytes),
			})
			return
		}
		log.Error("Registration failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "register user")
		return
	}

	log.Info("User registered successfully", map[string]interface{}{
		"user_id": result.User.ID,
	})

	c.JSON(http.StatusCreated, sessionBody(result))
}

// Login handles user login
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindError(c, err)
		return
	}

	result, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid email or password")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "login")
		return
	}

	log.Info("Login successful", map[string]interface{}{
		"user_id": result.User.ID,
	})

	c.JSON(http.StatusOK, sessionBody(result))
}

// Me returns the identity carried by the session token
// GET /api/v1/auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var name *string
	if claims.Name != "" {
		name = &claims.Name
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    claims.UserID,
			"email": claims.Email,
			"name":  name,
		},
	})
}

// Logout revokes the current session token
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	claims, ok := middleware.GetClaims(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.authService.Logout(c.Request.Context(), claims); err != nil {
		switch {
		case errors.Is(err, service.ErrLogoutUnavailable):
			apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.InternalConfigError, "Logout is not available")
		case errors.Is(err, util.ErrInvalidToken):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Invalid session token")
		default:
			log.Error("Logout failed", err, map[string]interface{}{
				"user_id": claims.UserID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out",
	})
}
