package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Hozymaister/Workshift-sub001/internal/api/middleware"
	"github.com/Hozymaister/Workshift-sub001/internal/model"
	"github.com/Hozymaister/Workshift-sub001/pkg/response"
)

// MustGetActorID 从 Gin 上下文中安全提取操作人 ID。
// ActorAuth 中间件未注入时返回 false 并写入 401 响应，调用方应直接 return。
func MustGetActorID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(middleware.ContextActorID)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return 0, false
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		response.Unauthorized(c, 10002, "未认证")
		return 0, false
	}
	return id, true
}

// isAdmin 当前操作人是否管理员
func isAdmin(c *gin.Context) bool {
	return c.GetString(middleware.ContextRole) == model.RoleAdmin
}

// parseID 解析路径参数中的数字 ID，非法时写入 400 响应
func parseID(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, 10001, label+"ID无效")
		return 0, false
	}
	return uint(id), true
}

// resolveSubject 确定查询对象：未指定或指定本人时为本人，指定他人需管理员权限
func resolveSubject(c *gin.Context, actorID uint, requested *uint) (uint, bool) {
	if requested == nil || *requested == actorID {
		return actorID, true
	}
	if !isAdmin(c) {
		response.Forbidden(c, 10003, "只能查看本人数据")
		return 0, false
	}
	return *requested, true
}
