package handlers

import (
	libraryapp "viewtube/internal/library/app"
	librarydomain "viewtube/internal/library/domain"

	"github.com/gofiber/fiber/v2"
)

// LibraryHandler 播放清單、稍後觀看與觀看紀錄
type LibraryHandler struct {
	libraryUC libraryapp.LibraryUseCase
}

// NewLibraryHandler create LibraryHandler
func NewLibraryHandler(libraryUC libraryapp.LibraryUseCase) *LibraryHandler {
	return &LibraryHandler{libraryUC: libraryUC}
}

// CreatePlaylist 建立播放清單
// @Summary Create a playlist
// @Tags Library
// @Accept json
// @Produce json
// @Param request body librarydomain.CreatePlaylistReq true "playlist payload"
// @Success 201 {object} map[string]interface{} "playlist"
// @Router /api/playlist [post]
func (h *LibraryHandler) CreatePlaylist(c *fiber.Ctx) error {
	var req librarydomain.CreatePlaylistReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request"})
	}

	playlist, err := h.libraryUC.CreatePlaylist(c.Context(), callerID(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"playlist": playlist})
}

// MyPlaylists 自己的清單
// @Summary List my playlists
// @Tags Library
// @Produce json
// @Success 200 {object} map[string]interface{} "playlists"
// @Router /api/playlist [get]
func (h *LibraryHandler) MyPlaylists(c *fiber.Ctx) error {
	playlists, err := h.libraryUC.MyPlaylists(c.Context(), callerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"playlists": playlists})
}

// GetPlaylist 清單內容
// @Summary Playlist with its playable videos
// @Tags Library
// @Produce json
// @Param id path string true "playlist id"
// @Success 200 {object} map[string]interface{} "playlist view"
// @Failure 404 {object} map[string]interface{} "playlist not found"
// @Router /api/playlist/{id} [get]
func (h *LibraryHandler) GetPlaylist(c *fiber.Ctx) error {
	view, err := h.libraryUC.GetPlaylist(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(view)
}

// UpdatePlaylist 僅擁有者可改
// @Summary Update playlist name/description
// @Tags Library
// @Accept json
// @Produce json
// @Param id path string true "playlist id"
// @Param request body librarydomain.UpdatePlaylistReq true "fields to update"
// @Success 200 {object} map[string]interface{} "playlist"
// @Router /api/playlist/{id} [patch]
func (h *LibraryHandler) UpdatePlaylist(c *fiber.Ctx) error {
	var req librarydomain.UpdatePlaylistReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request"})
	}

	playlist, err := h.libraryUC.UpdatePlaylist(c.Context(), callerID(c), c.Params("id"), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"playlist": playlist})
}

// DeletePlaylist 僅擁有者可刪
// @Summary Delete a playlist
// @Tags Library
// @Produce json
// @Param id path string true "playlist id"
// @Success 200 {object} map[string]interface{} "deleted"
// @Router /api/playlist/{id} [delete]
func (h *LibraryHandler) DeletePlaylist(c *fiber.Ctx) error {
	if err := h.libraryUC.DeletePlaylist(c.Context(), callerID(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "playlist deleted"})
}

// AddToPlaylist 加影片進清單
// @Summary Add a video to a playlist
// @Tags Library
// @Produce json
// @Param id path string true "playlist id"
// @Param videoId path string true "video id"
// @Success 200 {object} map[string]interface{} "added"
// @Router /api/playlist/{id}/videos/{videoId} [post]
func (h *LibraryHandler) AddToPlaylist(c *fiber.Ctx) error {
	if err := h.libraryUC.AddToPlaylist(c.Context(), callerID(c), c.Params("id"), c.Params("videoId")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "video added to playlist"})
}

// RemoveFromPlaylist 從清單移除影片
// @Summary Remove a video from a playlist
// @Tags Library
// @Produce json
// @Param id path string true "playlist id"
// @Param videoId path string true "video id"
// @Success 200 {object} map[string]interface{} "removed"
// @Router /api/playlist/{id}/videos/{videoId} [delete]
func (h *LibraryHandler) RemoveFromPlaylist(c *fiber.Ctx) error {
	if err := h.libraryUC.RemoveFromPlaylist(c.Context(), callerID(c), c.Params("id"), c.Params("videoId")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "video removed from playlist"})
}

// SaveVideo 加進稍後觀看
// @Summary Save a video for later
// @Tags Library
// @Produce json
// @Param videoId path string true "video id"
// @Success 201 {object} map[string]interface{} "saved"
// @Failure 409 {object} map[string]interface{} "video already saved"
// @Router /api/saved/{videoId} [post]
func (h *LibraryHandler) SaveVideo(c *fiber.Ctx) error {
	if err := h.libraryUC.SaveVideo(c.Context(), callerID(c), c.Params("videoId")); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "video saved"})
}

// UnsaveVideo 從稍後觀看移除
// @Summary Remove a saved video
// @Tags Library
// @Produce json
// @Param videoId path string true "video id"
// @Success 200 {object} map[string]interface{} "removed"
// @Router /api/saved/{videoId} [delete]
func (h *LibraryHandler) UnsaveVideo(c *fiber.Ctx) error {
	if err := h.libraryUC.UnsaveVideo(c.Context(), callerID(c), c.Params("videoId")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "video unsaved"})
}

// SavedVideos 稍後觀看清單
// @Summary List saved videos
// @Tags Library
// @Produce json
// @Success 200 {object} map[string]interface{} "saved list"
// @Router /api/saved [get]
func (h *LibraryHandler) SavedVideos(c *fiber.Ctx) error {
	list, err := h.libraryUC.SavedVideos(c.Context(), callerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(list)
}

// WatchHistory 觀看紀錄分頁
// @Summary My watch history
// @Tags Library
// @Produce json
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} map[string]interface{} "history page"
// @Router /api/history [get]
func (h *LibraryHandler) WatchHistory(c *fiber.Ctx) error {
	page, err := h.libraryUC.WatchHistory(c.Context(), callerID(c),
		queryInt64(c, "page", 1), queryInt64(c, "limit", 0))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(page)
}

// DeleteHistoryEntry 刪單筆紀錄
// @Summary Delete one watch-history entry
// @Tags Library
// @Produce json
// @Param id path string true "history entry id"
// @Success 200 {object} map[string]interface{} "deleted"
// @Router /api/history/{id} [delete]
func (h *LibraryHandler) DeleteHistoryEntry(c *fiber.Ctx) error {
	if err := h.libraryUC.DeleteHistoryEntry(c.Context(), callerID(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "history entry deleted"})
}

// ClearHistory 清空紀錄
// @Summary Clear my watch history
// @Tags Library
// @Produce json
// @Success 200 {object} map[string]interface{} "removed count"
// @Router /api/history [delete]
func (h *LibraryHandler) ClearHistory(c *fiber.Ctx) error {
	removed, err := h.libraryUC.ClearHistory(c.Context(), callerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "history cleared", "removed": removed})
}
