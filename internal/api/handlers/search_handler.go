package handlers

import (
	searchapp "viewtube/internal/search/app"

	"github.com/gofiber/fiber/v2"
)

// SearchHandler 搜尋與搜尋建議
type SearchHandler struct {
	searchUC searchapp.SearchUseCase
}

// NewSearchHandler create SearchHandler
func NewSearchHandler(searchUC searchapp.SearchUseCase) *SearchHandler {
	return &SearchHandler{searchUC: searchUC}
}

// Search 關鍵字搜尋公開影片
// @Summary Search public videos by keyword
// @Tags Search
// @Produce json
// @Param query query string true "keyword"
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} map[string]interface{} "search result"
// @Failure 400 {object} map[string]interface{} "query is required"
// @Router /api/search [get]
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	result, err := h.searchUC.Search(c.Context(), callerID(c), c.Query("query"),
		queryInt64(c, "page", 1), queryInt64(c, "limit", 0))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// Suggestions 熱門搜尋詞
// @Summary Popular search terms, optional prefix filter
// @Tags Search
// @Produce json
// @Param prefix query string false "term prefix"
// @Param limit query int false "max results"
// @Success 200 {object} map[string]interface{} "terms"
// @Router /api/search/suggestions [get]
func (h *SearchHandler) Suggestions(c *fiber.Ctx) error {
	terms, err := h.searchUC.Suggestions(c.Context(), c.Query("prefix"), queryInt64(c, "limit", 0))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"terms": terms})
}

// History 個人搜尋紀錄
// @Summary My recent search terms
// @Tags Search
// @Produce json
// @Success 200 {object} map[string]interface{} "history"
// @Router /api/search/history [get]
func (h *SearchHandler) History(c *fiber.Ctx) error {
	history, err := h.searchUC.History(c.Context(), callerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"history": history})
}
