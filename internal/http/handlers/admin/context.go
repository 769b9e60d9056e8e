package admin

import "github.com/gin-gonic/gin"

func contextString(c *gin.Context, key string) string {
	value, ok := c.Get(key)
	if !ok {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

// getActor 返回当前登录管理员的标识，用于审计归属
func getActor(c *gin.Context) string {
	if username := contextString(c, "admin_username"); username != "" {
		return username
	}
	return contextString(c, "admin_id")
}
