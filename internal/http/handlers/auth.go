package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lecturelens-backend/internal/http/response"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
	"github.com/yungbote/lecturelens-backend/internal/services"
)

type AuthHandler struct {
	log  *logger.Logger
	auth services.AuthService
}

func NewAuthHandler(log *logger.Logger, auth services.AuthService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), auth: auth}
}

// POST /api/login
// body: { "email": "...", "password": "..." }
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.auth.Login(requestDBC(c), req.Email, req.Password)
	if err != nil {
		response.RespondServiceError(c, err, "login_failed")
		return
	}
	response.RespondOK(c, session)
}

// GET /api/me
func (h *AuthHandler) Me(c *gin.Context) {
	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
	}
	me, err := h.auth.Me(requestDBC(c), token)
	if err != nil {
		response.RespondServiceError(c, err, "me_failed")
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}
