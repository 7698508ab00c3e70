package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"

	"extractor_server/adapter/out/auth"
	"extractor_server/pkg/logger"
)

// AuthHandler receives the Google token the extension obtained through
// its identity flow and hands it to the stored token source.
type AuthHandler struct {
	tokens *auth.StoredTokenSource
	log    *logger.Logger
}

func NewAuthHandler(tokens *auth.StoredTokenSource, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		tokens: tokens,
		log:    log.WithField("handler", "auth"),
	}
}

func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/auth/google/token", h.StoreToken)
}

type storeTokenRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (h *AuthHandler) StoreToken(c *fiber.Ctx) error {
	var req storeTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.AccessToken == "" {
		return ErrorResponse(c, fiber.StatusBadRequest, "access_token is required")
	}

	token := &oauth2.Token{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		TokenType:    req.TokenType,
	}
	if req.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(req.ExpiresIn) * time.Second)
	}

	if err := h.tokens.Save(c.Context(), token); err != nil {
		return AppErrorResponse(c, err)
	}

	h.log.Info("Google token stored")
	return SuccessResponse(c, fiber.Map{"stored": true})
}
