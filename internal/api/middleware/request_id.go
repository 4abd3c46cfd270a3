package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const requestIDKey = "request_id"

// requestIDMaxLen 外部传入的 Request-ID 超过该长度时重新生成，防止日志注入
const requestIDMaxLen = 64

// RequestID 请求追踪 ID 中间件
// 优先沿用网关的 X-Request-ID，否则生成 UUID；同时写入响应头和当前 span
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}

		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)
		trace.SpanFromContext(c.Request.Context()).SetAttributes(attribute.String("request.id", rid))

		c.Next()
	}
}
