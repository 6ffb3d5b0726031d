// File: /controllers/auth_controller.go
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jeromeleyapps-bit/flotteLPD/backends"
	"github.com/jeromeleyapps-bit/flotteLPD/models"
	"github.com/jeromeleyapps-bit/flotteLPD/utils"
)

type AuthController struct {
	backend   backends.Adapter
	jwtSecret string
}

func NewAuthController(backend backends.Adapter, jwtSecret string) *AuthController {
	return &AuthController{
		backend:   backend,
		jwtSecret: jwtSecret,
	}
}

type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string           `json:"token"`
	User  *models.AuthUser `json:"user"`
}

func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !utils.IsValidEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
		return
	}
	if !utils.IsValidPassword(req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password too weak"})
		return
	}

	user, err := ac.backend.SignUp(c.Request.Context(), req.Email, req.Password, backends.SignUpData{
		FullName: req.FullName,
	})
	if err != nil {
		respondBackendError(c, err)
		return
	}

	token, err := ac.generateJWT(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user})
}

func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.backend.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondBackendError(c, err)
		return
	}

	token, err := ac.generateJWT(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}

func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.backend.SignOut(c.Request.Context()); err != nil {
		respondBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// GetSession returns the backend session, or null when none exists or it has
// expired.
func (ac *AuthController) GetSession(c *gin.Context) {
	session, err := ac.backend.GetSession(c.Request.Context())
	if err != nil {
		respondBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// Me returns the resolved current user with profile and department name.
func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.backend.GetUser(c.Request.Context())
	if err != nil {
		respondBackendError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": backends.ErrNotAuthenticated.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (ac *AuthController) generateJWT(userID, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     time.Now().Add(time.Hour * 24 * 7).Unix(), // 7 days
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(ac.jwtSecret))
}
