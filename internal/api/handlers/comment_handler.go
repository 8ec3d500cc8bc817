package handlers

import (
	commentapp "viewtube/internal/comment/app"
	commentdomain "viewtube/internal/comment/domain"

	"github.com/gofiber/fiber/v2"
)

// CommentHandler 影片留言
type CommentHandler struct {
	commentUC commentapp.CommentUseCase
}

// NewCommentHandler create CommentHandler
func NewCommentHandler(commentUC commentapp.CommentUseCase) *CommentHandler {
	return &CommentHandler{commentUC: commentUC}
}

// Create 新增留言
// @Summary Post a comment on a video
// @Tags Comments
// @Accept json
// @Produce json
// @Param videoId path string true "video id"
// @Param request body commentdomain.CreateCommentReq true "comment payload"
// @Success 201 {object} map[string]interface{} "comment"
// @Failure 404 {object} map[string]interface{} "video not found"
// @Router /api/comments/{videoId} [post]
func (h *CommentHandler) Create(c *fiber.Ctx) error {
	var req commentdomain.CreateCommentReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request"})
	}

	comment, err := h.commentUC.AddComment(c.Context(), callerID(c), c.Params("videoId"), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment})
}

// List 影片留言分頁
// @Summary List comments on a video
// @Tags Comments
// @Produce json
// @Param videoId path string true "video id"
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} map[string]interface{} "comment page"
// @Router /api/comments/{videoId} [get]
func (h *CommentHandler) List(c *fiber.Ctx) error {
	page, err := h.commentUC.ListComments(c.Context(), c.Params("videoId"),
		queryInt64(c, "page", 1), queryInt64(c, "limit", 0))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(page)
}

// Delete 作者刪自己的留言
// @Summary Delete own comment
// @Tags Comments
// @Produce json
// @Param id path string true "comment id"
// @Success 200 {object} map[string]interface{} "deleted"
// @Failure 403 {object} map[string]interface{} "not the author"
// @Router /api/comments/{id} [delete]
func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	if err := h.commentUC.DeleteComment(c.Context(), callerID(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "comment deleted"})
}
