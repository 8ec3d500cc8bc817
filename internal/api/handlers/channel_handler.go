package handlers

import (
	channelapp "viewtube/internal/channel/app"
	channeldomain "viewtube/internal/channel/domain"
	subapp "viewtube/internal/subscription/app"

	"github.com/gofiber/fiber/v2"
)

// ChannelHandler 頻道 CRUD 與訂閱者清單
type ChannelHandler struct {
	channelUC channelapp.ChannelUseCase
	subUC     subapp.SubscriptionUseCase
}

// NewChannelHandler create ChannelHandler
func NewChannelHandler(channelUC channelapp.ChannelUseCase, subUC subapp.SubscriptionUseCase) *ChannelHandler {
	return &ChannelHandler{channelUC: channelUC, subUC: subUC}
}

// Create 建立頻道
// @Summary Create a channel
// @Tags Channels
// @Accept json
// @Produce json
// @Param request body channeldomain.CreateChannelReq true "channel payload"
// @Success 201 {object} map[string]interface{} "channel"
// @Failure 400 {object} map[string]interface{} "duplicate name or bad payload"
// @Router /api/channel [post]
func (h *ChannelHandler) Create(c *fiber.Ctx) error {
	var req channeldomain.CreateChannelReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request"})
	}

	channel, err := h.channelUC.CreateChannel(c.Context(), callerID(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"channel": channel})
}

// Mine 自己的頻道
// @Summary List my channels
// @Tags Channels
// @Produce json
// @Success 200 {object} map[string]interface{} "channels"
// @Router /api/channel [get]
func (h *ChannelHandler) Mine(c *fiber.Ctx) error {
	channels, err := h.channelUC.MyChannels(c.Context(), callerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"channels": channels})
}

// Get 頻道頁：頻道資料 + 公開影片
// @Summary Channel page with its public videos
// @Tags Channels
// @Produce json
// @Param id path string true "channel id"
// @Success 200 {object} map[string]interface{} "channel page"
// @Failure 404 {object} map[string]interface{} "channel not found"
// @Router /api/channel/{id} [get]
func (h *ChannelHandler) Get(c *fiber.Ctx) error {
	page, err := h.channelUC.GetChannel(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(page)
}

// Update 僅擁有者可改
// @Summary Update channel profile
// @Tags Channels
// @Accept json
// @Produce json
// @Param id path string true "channel id"
// @Param request body channeldomain.UpdateChannelReq true "fields to update"
// @Success 200 {object} map[string]interface{} "channel"
// @Failure 403 {object} map[string]interface{} "not the owner"
// @Router /api/channel/{id} [patch]
func (h *ChannelHandler) Update(c *fiber.Ctx) error {
	var req channeldomain.UpdateChannelReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request"})
	}

	channel, err := h.channelUC.UpdateChannel(c.Context(), callerID(c), c.Params("id"), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"channel": channel})
}

// Delete 刪頻道並連鎖清掉影片與訂閱
// @Summary Delete a channel and cascade its videos and subscriptions
// @Tags Channels
// @Produce json
// @Param id path string true "channel id"
// @Success 200 {object} map[string]interface{} "deleted"
// @Failure 403 {object} map[string]interface{} "not the owner"
// @Router /api/channel/{id} [delete]
func (h *ChannelHandler) Delete(c *fiber.Ctx) error {
	if err := h.channelUC.DeleteChannel(c.Context(), callerID(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "channel deleted"})
}

// Subscribers 頻道的訂閱者
// @Summary List channel subscribers
// @Tags Channels
// @Produce json
// @Param id path string true "channel id"
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} map[string]interface{} "subscribers"
// @Router /api/channel/{id}/subscribers [get]
func (h *ChannelHandler) Subscribers(c *fiber.Ctx) error {
	list, err := h.subUC.ChannelSubscribers(c.Context(), c.Params("id"),
		queryInt64(c, "page", 1), queryInt64(c, "limit", 0))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(list)
}
