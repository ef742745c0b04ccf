package http

import (
	"time"

	"github.com/NHFNHF/zhuanghe-majiang/common/log"
	"github.com/google/uuid"
)

// CorsMiddleware 跨域
func CorsMiddleware() MiddlewareFunc {
	return func(c *Context) error {
		if c.GetHeader("Origin") != "" {
			c.SetHeader("Access-Control-Allow-Origin", "*")
			c.SetHeader("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE")
			c.SetHeader("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, X-Request-ID")
		}
		if c.Method() == "OPTIONS" {
			c.AbortWithStatus(204)
		}
		return nil
	}
}

// LoggerMiddleware 请求结束后记录耗时
func LoggerMiddleware() MiddlewareFunc {
	return func(c *Context) error {
		start := time.Now()
		c.Next()
		log.Debug("HTTP %s %s %d %v request=%s", c.Method(), c.Path(), c.StatusCode(), time.Since(start), c.GetString("requestID"))
		return nil
	}
}

// RequestIDMiddleware 透传或生成请求 ID
func RequestIDMiddleware() MiddlewareFunc {
	return func(c *Context) error {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestID", requestID)
		c.SetHeader("X-Request-ID", requestID)
		return nil
	}
}
