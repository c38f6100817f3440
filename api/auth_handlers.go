package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// LoginHandler exchanges the admin password for a bearer token.
func (s *Server) LoginHandler(c *gin.Context) {
	var loginReq struct {
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if s.AdminPasswordHash == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Admin access is not configured"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.AdminPasswordHash), []byte(loginReq.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := s.generateJWT(jwt.MapClaims{"role": "admin"})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"role":   "admin",
		"token":  token,
	})
}

// generateJWT creates a signed token with standard claims set.
func (s *Server) generateJWT(claims jwt.MapClaims) (string, error) {
	lifetime := s.TokenLifetime
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	claims["iat"] = time.Now().UTC().Unix()
	claims["exp"] = time.Now().UTC().Add(lifetime).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.JWTSecret))
}
