package admin

import (
	"github.com/modboard-next/internal/http/response"
	"github.com/modboard-next/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestLog 提供携带 request_id 的日志实例
func requestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// respondError 记录内部错误并返回稳定的业务错误码
// err 只进日志，响应体不携带内部细节
func respondError(c *gin.Context, code int, msg string, err error) {
	if err != nil {
		requestLog(c).Errorw("request_failed",
			"path", c.FullPath(),
			"code", code,
			"error", err,
		)
	}
	response.Error(c, code, msg)
}
