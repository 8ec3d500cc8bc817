package handlers

import (
	subapp "viewtube/internal/subscription/app"

	"github.com/gofiber/fiber/v2"
)

// SubscriptionHandler 訂閱與退訂
type SubscriptionHandler struct {
	subUC subapp.SubscriptionUseCase
}

// NewSubscriptionHandler create SubscriptionHandler
func NewSubscriptionHandler(subUC subapp.SubscriptionUseCase) *SubscriptionHandler {
	return &SubscriptionHandler{subUC: subUC}
}

// Subscribe 訂閱頻道
// @Summary Subscribe to a channel
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param request body object true "{\"channel_id\": \"...\"}"
// @Success 201 {object} map[string]interface{} "subscription"
// @Failure 409 {object} map[string]interface{} "already subscribed"
// @Router /api/subscription [post]
func (h *SubscriptionHandler) Subscribe(c *fiber.Ctx) error {
	var req struct {
		ChannelID string `json:"channel_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request"})
	}

	sub, err := h.subUC.Subscribe(c.Context(), callerID(c), req.ChannelID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"subscription": sub})
}

// Unsubscribe 依訂閱帳目 id 退訂
// @Summary Delete a subscription by its id
// @Tags Subscriptions
// @Produce json
// @Param id path string true "subscription id"
// @Success 200 {object} map[string]interface{} "unsubscribed"
// @Failure 404 {object} map[string]interface{} "subscription not found"
// @Router /api/subscription/{id} [delete]
func (h *SubscriptionHandler) Unsubscribe(c *fiber.Ctx) error {
	if err := h.subUC.Unsubscribe(c.Context(), callerID(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "unsubscribed"})
}

// Mine 我的訂閱清單
// @Summary List my subscriptions
// @Tags Subscriptions
// @Produce json
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} map[string]interface{} "subscriptions"
// @Router /api/subscription [get]
func (h *SubscriptionHandler) Mine(c *fiber.Ctx) error {
	list, err := h.subUC.MySubscriptions(c.Context(), callerID(c),
		queryInt64(c, "page", 1), queryInt64(c, "limit", 0))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(list)
}
