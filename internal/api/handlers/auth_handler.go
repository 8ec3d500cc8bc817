package handlers

import (
	authapp "viewtube/internal/auth/app"
	authdomain "viewtube/internal/auth/domain"
	"viewtube/pkg/middlewares"
	"viewtube/pkg/token"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler 處理帳號註冊、登入與個人資料
type AuthHandler struct {
	authUC authapp.AuthUseCase
	tokens *token.Service
}

// NewAuthHandler create AuthHandler
func NewAuthHandler(authUC authapp.AuthUseCase, tokens *token.Service) *AuthHandler {
	return &AuthHandler{authUC: authUC, tokens: tokens}
}

// Register 注册新用户
// @Summary Register a new account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body authdomain.RegisterReq true "register request"
// @Success 201 {object} map[string]interface{} "user + access token"
// @Failure 400 {object} map[string]interface{} "validation error"
// @Failure 409 {object} map[string]interface{} "user already exists"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req authdomain.RegisterReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request"})
	}

	result, err := h.authUC.Register(c.Context(), req)
	if err != nil {
		return fail(c, err)
	}

	middlewares.SetRefreshCookie(c, result.RefreshToken, h.tokens.RefreshTTL())
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "register success",
		"user":         result.User,
		"access_token": result.AccessToken,
	})
}

// Login 用户登录
// @Summary Log in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body authdomain.LoginReq true "login request"
// @Success 200 {object} map[string]interface{} "user + access token"
// @Failure 401 {object} map[string]interface{} "incorrect password"
// @Failure 404 {object} map[string]interface{} "user not found"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req authdomain.LoginReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request"})
	}

	result, err := h.authUC.Login(c.Context(), req)
	if err != nil {
		return fail(c, err)
	}

	middlewares.SetRefreshCookie(c, result.RefreshToken, h.tokens.RefreshTTL())
	return c.JSON(fiber.Map{
		"message":      "login success",
		"user":         result.User,
		"access_token": result.AccessToken,
	})
}

// Logout 用户登出
// @Summary Log out and drop the refresh cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{} "logout success"
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	middlewares.ClearRefreshCookie(c)
	return c.JSON(fiber.Map{"message": "logout success"})
}

// Me 当前用户资料
// @Summary Current user profile
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{} "user"
// @Failure 401 {object} map[string]interface{} "missing credential"
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.authUC.Me(c.Context(), callerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}
