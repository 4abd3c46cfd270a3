package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Hozymaister/Workshift-sub001/internal/model"
	"github.com/Hozymaister/Workshift-sub001/pkg/response"
)

// 上游网关注入的身份请求头
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

// gin.Context 中的身份键
const (
	ContextActorID = "actor_id"
	ContextRole    = "role"
)

// ActorAuth 读取网关注入的操作人身份
// 本服务不做认证：X-Actor-ID 缺失或非法时拒绝请求，X-Actor-Role 缺省为 worker
func ActorAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderActorID)
		if raw == "" {
			response.Unauthorized(c, 10002, "缺少操作人身份")
			c.Abort()
			return
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			response.Unauthorized(c, 10002, "操作人身份无效")
			c.Abort()
			return
		}

		role := c.GetHeader(HeaderActorRole)
		switch role {
		case "":
			role = model.RoleWorker
		case model.RoleAdmin, model.RoleWorker:
		default:
			response.Unauthorized(c, 10002, "操作人角色无效")
			c.Abort()
			return
		}

		c.Set(ContextActorID, uint(id))
		c.Set(ContextRole, role)

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前操作人是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		userRole, _ := role.(string)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}
