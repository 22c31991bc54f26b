package api

import (
	"net/http"

	"api_dealership/internal/access"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authHandler struct {
	users  access.Users
	tokens *access.Tokens
	logger *zap.Logger
}

// handleLogin handles POST /auth/token: it checks the credentials and
// returns a signed bearer token.
func (h *authHandler) handleLogin(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.users.Authenticate(req.Username, req.Password)
	if err != nil {
		h.logger.Warn("login rejected", zap.String("username", req.Username))
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.tokens.Generate(user.Username, user.Role, user.Name)
	if err != nil {
		h.logger.Error("failed to generate token", zap.String("username", user.Username), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token":    token,
		"role":     user.Role,
		"username": user.Username,
		"name":     user.Name,
	})
}
