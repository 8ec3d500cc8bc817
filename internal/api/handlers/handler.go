package handlers

import (
	"fmt"
	"net/url"
	"strconv"

	"viewtube/pkg/config"
	errprocess "viewtube/pkg/err"
	"viewtube/pkg/logger"
	"viewtube/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ConnectCheck check api connect start
// @Summary Check API server status
// @Description Returns a simple confirmation message
// @Tags Shared
// @Success 200 {string} string "api server start!"
// @Router / [get]
func ConnectCheck(c *fiber.Ctx) error {
	return c.SendString("api server start!")
}

// DebugLogFlag toggle debug log flag
// @Summary Toggle Debug Log Flag
// @Description Enable or disable debug logging
// @Tags Shared
// @Param service query string true "Service name"
// @Param status query bool true "Debug status"
// @Success 200 {string} string "Service debug mode updated"
// @Failure 400 {string} string "Invalid status value"
// @Router /debug [post]
func DebugLogFlag(c *fiber.Ctx) error {
	query, _ := url.ParseQuery(string(c.Context().QueryArgs().QueryString()))
	service := query.Get("service")
	statusStr := query.Get("status")
	logger.Log.Info("debug", zap.String("status", statusStr))
	status, err := strconv.ParseBool(statusStr)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	switch service {
	default:
		logger.Log.SetDebugMode(status)
	}
	return c.SendString(fmt.Sprintf("service[%s]: debug mode is : %t", service, status))
}

// fail 統一轉換錯誤分類成 HTTP 回應。
// message 是對外穩定的字串，內部細節只在非 production 附上
func fail(c *fiber.Ctx, err error) error {
	body := fiber.Map{"message": errprocess.MessageOf(err)}
	if !config.IsProduction() {
		body["error"] = err.Error()
	}
	return c.Status(errprocess.StatusCode(err)).JSON(body)
}

// callerID 取 middleware 放進 Locals 的使用者 id，匿名時回空字串
func callerID(c *fiber.Ctx) string {
	if id, ok := c.Locals(middlewares.TokenUserID).(string); ok {
		return id
	}
	return ""
}

// queryFormFloat form 欄位轉 float64，缺省或格式錯誤回 0
func queryFormFloat(c *fiber.Ctx, key string) float64 {
	f, err := strconv.ParseFloat(c.FormValue(key), 64)
	if err != nil {
		return 0
	}
	return f
}

// queryInt64 query 參數轉 int64，缺省或格式錯誤回 fallback
func queryInt64(c *fiber.Ctx, key string, fallback int64) int64 {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
