package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hostsuite/resellerd/internal/auth"
	"github.com/hostsuite/resellerd/internal/config"
)

// AuthHandler manages operator login for the admin API.
type AuthHandler struct {
	operator config.OperatorConfig
	jwt      config.JWTConfig
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(operator config.OperatorConfig, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{operator: operator, jwt: jwtCfg}
}

// loginRequest captures the operator login payload.
type loginRequest struct {
	Username string `json:"username"` // Operator username.
	Password string `json:"password"` // Operator password.
}

// Login verifies operator credentials and issues a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if errVerify := auth.VerifyOperator(h.operator, strings.TrimSpace(body.Username), body.Password); errVerify != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, errIssue := auth.IssueToken(h.jwt, h.operator.Username)
	if errIssue != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
