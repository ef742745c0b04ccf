package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NHFNHF/zhuanghe-majiang/common/config"
	"github.com/NHFNHF/zhuanghe-majiang/common/http"
	"github.com/NHFNHF/zhuanghe-majiang/common/log"
	"github.com/NHFNHF/zhuanghe-majiang/core/container"
	"github.com/NHFNHF/zhuanghe-majiang/gate/api"
)

// NewServer 装配路由，测试里也用它
func NewServer(c *container.TableContainer, cfg config.Config) *http.HttpServer {
	server := http.NewHttpServer(
		http.WithPort(cfg.HttpPort),
		http.WithMode(cfg.Log.Level),
	)

	// 中间处理器注册
	server.Use(
		http.RequestIDMiddleware(),
		http.CorsMiddleware(),
		http.LoggerMiddleware(),
	)

	handler := api.NewHandler(c.Tables, c.Monitor, c.Analyzer)
	handler.Archive = c.Archive
	handler.Board = c.Board
	api.RegisterRoutes(server, handler, c.Hub)
	return server
}

func Run(ctx context.Context) error {
	cfg := config.Conf.Snapshot()

	tableContainer, err := container.NewTableContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("table 容器初始化失败: %w", err)
	}
	defer func() {
		if err := tableContainer.Close(); err != nil {
			log.Error("关闭 table 容器失败: %v", err)
		}
	}()

	monitorCtx, cancelMonitor := context.WithCancel(ctx)
	defer cancelMonitor()
	go tableContainer.Monitor.Start(monitorCtx)

	server := NewServer(tableContainer, cfg)
	errCh := make(chan error, 1)
	go func() {
		log.Info("启动 HTTP 服务器，端口: %d", cfg.HttpPort)
		if err := server.Start(); err != nil {
			errCh <- err
		}
	}()

	stop := func() {
		log.Info("正在关闭 table 服务...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP 服务器关闭失败: %v", err)
		} else {
			log.Info("HTTP 服务器已优雅关闭")
		}
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGHUP)
	defer signal.Stop(c)
	for {
		select {
		case <-ctx.Done():
			stop()
			return nil
		case err := <-errCh:
			return fmt.Errorf("HTTP 服务器启动失败: %w", err)
		case s := <-c:
			switch s {
			case syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT:
				stop()
				log.Info("中断信号，服务停止")
				return nil
			case syscall.SIGHUP:
				stop()
				log.Info("挂起信号，服务停止")
				return nil
			default:
				return nil
			}
		}
	}
}
