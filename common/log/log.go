package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// 未调用 InitLog 前也能输出，方便单测
var logger = newLogger(os.Stdout, "", log.InfoLevel)

type LogConf struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"` // 为空只写标准输出
}

func newLogger(w io.Writer, prefix string, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		ReportCaller:    true,
		CallerOffset:    1,
		Level:           level,
	})
	return l
}

// InitLog 初始化全局日志；配置了 Path 时同时写入文件
func InitLog(appName string, conf LogConf) error {
	var w io.Writer = os.Stdout
	if conf.Path != "" {
		if err := os.MkdirAll(filepath.Dir(conf.Path), 0o755); err != nil {
			return fmt.Errorf("创建日志目录失败: %w", err)
		}
		f, err := os.OpenFile(conf.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("打开日志文件失败: %w", err)
		}
		w = io.MultiWriter(os.Stdout, f)
	}
	logger = newLogger(w, appName, ParseLevel(conf.Level))
	return nil
}

// ParseLevel 默认为 info 级别
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func Fatal(format string, args ...any) {
	logger.Fatalf(format, args...)
}

func Info(format string, args ...any) {
	logger.Infof(format, args...)
}

func Warn(format string, args ...any) {
	logger.Warnf(format, args...)
}

func Error(format string, args ...any) {
	logger.Errorf(format, args...)
}

func Debug(format string, args ...any) {
	logger.Debugf(format, args...)
}
