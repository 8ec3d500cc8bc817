package handlers

import (
	"strings"

	videoapp "viewtube/internal/video/app"
	videodomain "viewtube/internal/video/domain"

	"github.com/gofiber/fiber/v2"
)

// VideoHandler 影片上傳、播放、互動與熱門排行
type VideoHandler struct {
	videoUC    videoapp.VideoUseCase
	trendingUC videoapp.TrendingUseCase
}

// NewVideoHandler create VideoHandler
func NewVideoHandler(videoUC videoapp.VideoUseCase, trendingUC videoapp.TrendingUseCase) *VideoHandler {
	return &VideoHandler{videoUC: videoUC, trendingUC: trendingUC}
}

// Upload 上传影片
// @Summary Upload a video with optional thumbnail
// @Tags Videos
// @Accept multipart/form-data
// @Produce json
// @Param video formData file true "video file"
// @Param thumbnail formData file false "thumbnail image"
// @Param title formData string true "title"
// @Param channel_id formData string false "channel id"
// @Success 201 {object} map[string]interface{} "video"
// @Failure 403 {object} map[string]interface{} "not the channel owner"
// @Router /api/videos/upload [post]
func (h *VideoHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "video file is required"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "cannot read video file"})
	}
	defer file.Close()

	in := &videoapp.UploadInput{
		Req: videodomain.UploadVideoReq{
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
			Visibility:  c.FormValue("visibility"),
			ChannelID:   c.FormValue("channel_id"),
		},
		File:        file,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}
	if tags := strings.TrimSpace(c.FormValue("tags")); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				in.Req.Tags = append(in.Req.Tags, tag)
			}
		}
	}
	if duration := queryFormFloat(c, "duration"); duration > 0 {
		in.Req.Duration = duration
	}

	if thumbHeader, err := c.FormFile("thumbnail"); err == nil {
		thumb, err := thumbHeader.Open()
		if err == nil {
			defer thumb.Close()
			in.Thumbnail = thumb
			in.ThumbnailName = thumbHeader.Filename
			in.ThumbnailSize = thumbHeader.Size
			in.ThumbnailContent = thumbHeader.Header.Get("Content-Type")
		}
	}

	video, err := h.videoUC.UploadVideo(c.Context(), callerID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"video": video})
}

// Trending 熱門影片
// @Summary Trending videos over the last N days
// @Tags Videos
// @Produce json
// @Param window query int false "window in days (1-30)"
// @Param limit query int false "max results"
// @Success 200 {object} map[string]interface{} "entries"
// @Router /api/videos [get]
func (h *VideoHandler) Trending(c *fiber.Ctx) error {
	entries, err := h.trendingUC.Trending(c.Context(),
		queryInt64(c, "window", 7), queryInt64(c, "limit", 0))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries})
}

// Get 播放頁，匿名可看，會記一次觀看
// @Summary Video detail with creator and channel projection
// @Tags Videos
// @Produce json
// @Param id path string true "video id"
// @Success 200 {object} map[string]interface{} "video detail"
// @Failure 404 {object} map[string]interface{} "video not found"
// @Router /api/videos/{id} [get]
func (h *VideoHandler) Get(c *fiber.Ctx) error {
	detail, err := h.videoUC.GetVideo(c.Context(), c.Params("id"), callerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(detail)
}

// Update 僅擁有者可改
// @Summary Update video metadata
// @Tags Videos
// @Accept json
// @Produce json
// @Param id path string true "video id"
// @Param request body videodomain.UpdateVideoReq true "fields to update"
// @Success 200 {object} map[string]interface{} "video"
// @Failure 403 {object} map[string]interface{} "not the owner"
// @Router /api/videos/{id} [patch]
func (h *VideoHandler) Update(c *fiber.Ctx) error {
	var req videodomain.UpdateVideoReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request"})
	}

	video, err := h.videoUC.UpdateVideo(c.Context(), callerID(c), c.Params("id"), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"video": video})
}

// Delete 刪影片並連鎖清掉計數、紀錄、收藏、清單與留言
// @Summary Delete a video and cascade its derived records
// @Tags Videos
// @Produce json
// @Param id path string true "video id"
// @Success 200 {object} map[string]interface{} "deleted"
// @Failure 403 {object} map[string]interface{} "not the owner"
// @Router /api/videos/{id} [delete]
func (h *VideoHandler) Delete(c *fiber.Ctx) error {
	if err := h.videoUC.DeleteVideo(c.Context(), callerID(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "video deleted"})
}

// Like 按讚 toggle：已讚再按一次取消，倒讚中按讚換邊
// @Summary Toggle like on a video
// @Tags Videos
// @Produce json
// @Param id path string true "video id"
// @Success 200 {object} map[string]interface{} "video"
// @Router /api/videos/{id}/like [put]
func (h *VideoHandler) Like(c *fiber.Ctx) error {
	return h.react(c, videodomain.ReactionLike)
}

// Dislike 倒讚 toggle
// @Summary Toggle dislike on a video
// @Tags Videos
// @Produce json
// @Param id path string true "video id"
// @Success 200 {object} map[string]interface{} "video"
// @Router /api/videos/{id}/dislike [put]
func (h *VideoHandler) Dislike(c *fiber.Ctx) error {
	return h.react(c, videodomain.ReactionDislike)
}

func (h *VideoHandler) react(c *fiber.Ctx, kind videodomain.ReactionKind) error {
	video, err := h.videoUC.React(c.Context(), callerID(c), c.Params("id"), kind)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"video": video})
}

// Suggestions 同標籤的其他公開影片
// @Summary Suggested videos sharing tags
// @Tags Videos
// @Produce json
// @Param id path string true "video id"
// @Param limit query int false "max results"
// @Success 200 {object} map[string]interface{} "videos"
// @Router /api/videos/{id}/suggestions [get]
func (h *VideoHandler) Suggestions(c *fiber.Ctx) error {
	videos, err := h.videoUC.Suggestions(c.Context(), c.Params("id"), queryInt64(c, "limit", 0))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"videos": videos})
}

// LogWatch 回報單次觀看時長
// @Summary Log a watch session duration
// @Tags Videos
// @Accept json
// @Produce json
// @Param id path string true "video id"
// @Param request body object true "{\"duration\": seconds}"
// @Success 200 {object} map[string]interface{} "logged"
// @Router /api/videos/{id}/watch [post]
func (h *VideoHandler) LogWatch(c *fiber.Ctx) error {
	var req struct {
		Duration float64 `json:"duration"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request"})
	}

	if err := h.videoUC.LogWatch(c.Context(), callerID(c), c.Params("id"), req.Duration); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "watch logged"})
}

// Stats 觀看統計，僅擁有者
// @Summary Watch statistics for a video (owner only)
// @Tags Videos
// @Produce json
// @Param id path string true "video id"
// @Success 200 {object} map[string]interface{} "stats"
// @Failure 403 {object} map[string]interface{} "not the owner"
// @Router /api/videos/{id}/stats [get]
func (h *VideoHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.videoUC.VideoStats(c.Context(), callerID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"stats": stats})
}
