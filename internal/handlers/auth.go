// internal/handlers/auth.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dishflow/shiftbot/internal/pkg/response"
	authService "github.com/dishflow/shiftbot/internal/services/auth"
)

// AuthHandler — вход владельца в HTTP-панель. Учётка одна и задаётся
// окружением: пользователей как таковых у бота нет, персонал
// авторизуется кодами в Telegram.
type AuthHandler struct {
	jwtService        *authService.JWTService
	adminUsername     string
	adminPasswordHash string
}

func NewAuthHandler(jwtService *authService.JWTService, adminUsername, adminPasswordHash string) *AuthHandler {
	return &AuthHandler{
		jwtService:        jwtService,
		adminUsername:     adminUsername,
		adminPasswordHash: adminPasswordHash,
	}
}

// LoginHandler — выдаёт токен панели по логину и паролю.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if body.Username != h.adminUsername || !authService.CheckPassword(h.adminPasswordHash, body.Password) {
		response.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.jwtService.GenerateToken(body.Username, "owner")
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Could not generate token")
		return
	}

	response.RespondWithJSON(w, http.StatusOK, map[string]string{"token": token})
}
