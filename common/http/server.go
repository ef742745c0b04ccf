package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type HandlerFunc func(*Context) error
type MiddlewareFunc func(*Context) error

// HttpServer gin 的薄封装，处理函数返回 error 统一转成 500
type HttpServer struct {
	engine *gin.Engine
	server *http.Server
	port   int
}

type ServerOption func(*HttpServer)

func WithPort(port int) ServerOption {
	return func(s *HttpServer) {
		s.port = port
	}
}

// WithMode 按日志级别选择 gin 模式，debug 之外一律 release
func WithMode(level string) ServerOption {
	return func(s *HttpServer) {
		switch strings.ToLower(level) {
		case gin.DebugMode:
			gin.SetMode(gin.DebugMode)
		case gin.TestMode:
			gin.SetMode(gin.TestMode)
		default:
			gin.SetMode(gin.ReleaseMode)
		}
	}
}

func NewHttpServer(opts ...ServerOption) *HttpServer {
	s := &HttpServer{port: 8080}
	for _, opt := range opts {
		opt(s)
	}
	// gin.New 读取当前模式，必须在选项之后创建
	s.engine = gin.New()
	s.engine.Use(gin.Recovery())
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.engine,
	}
	return s
}

func (s *HttpServer) wrapHandler(handler HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := newContext(c)
		if err := handler(ctx); err != nil {
			ctx.InternalServerError(err.Error())
		}
	}
}

func (s *HttpServer) wrapMiddleware(middleware MiddlewareFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := newContext(c)
		if err := middleware(ctx); err != nil {
			ctx.InternalServerError(err.Error())
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *HttpServer) GET(path string, handler HandlerFunc) {
	s.engine.GET(path, s.wrapHandler(handler))
}

func (s *HttpServer) POST(path string, handler HandlerFunc) {
	s.engine.POST(path, s.wrapHandler(handler))
}

func (s *HttpServer) DELETE(path string, handler HandlerFunc) {
	s.engine.DELETE(path, s.wrapHandler(handler))
}

// Mount 挂载原生 http.Handler，用于 websocket 升级这类需要直接接管连接的路由
func (s *HttpServer) Mount(method, path string, h http.Handler) {
	s.engine.Handle(method, path, gin.WrapH(h))
}

func (s *HttpServer) Group(relativePath string, middlewares ...MiddlewareFunc) *RouterGroup {
	g := s.engine.Group(relativePath)
	for _, m := range middlewares {
		g.Use(s.wrapMiddleware(m))
	}
	return &RouterGroup{group: g, server: s}
}

type RouterGroup struct {
	group  *gin.RouterGroup
	server *HttpServer
}

func (rg *RouterGroup) GET(path string, handler HandlerFunc) {
	rg.group.GET(path, rg.server.wrapHandler(handler))
}

func (rg *RouterGroup) POST(path string, handler HandlerFunc) {
	rg.group.POST(path, rg.server.wrapHandler(handler))
}

func (rg *RouterGroup) DELETE(path string, handler HandlerFunc) {
	rg.group.DELETE(path, rg.server.wrapHandler(handler))
}

func (rg *RouterGroup) Group(relativePath string, middlewares ...MiddlewareFunc) *RouterGroup {
	g := rg.group.Group(relativePath)
	for _, m := range middlewares {
		g.Use(rg.server.wrapMiddleware(m))
	}
	return &RouterGroup{group: g, server: rg.server}
}

// Use 添加全局中间件
func (s *HttpServer) Use(middlewares ...MiddlewareFunc) {
	for _, m := range middlewares {
		s.engine.Use(s.wrapMiddleware(m))
	}
}

// Start 阻塞直到 Shutdown
func (s *HttpServer) Start() error {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HttpServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler 测试里直接交给 httptest
func (s *HttpServer) Handler() http.Handler {
	return s.engine
}

func (s *HttpServer) Port() int {
	return s.port
}
