package main

import (
	"context"
	"fmt"
	"os"

	"github.com/NHFNHF/zhuanghe-majiang/common/config"
	"github.com/NHFNHF/zhuanghe-majiang/common/log"
	"github.com/NHFNHF/zhuanghe-majiang/common/metrics"
	"github.com/NHFNHF/zhuanghe-majiang/table/app"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "table",
	Short: "庄河麻将牌桌服务",
	Long:  `庄河麻将牌桌服务：HTTP 接口、websocket 推送与结算下游`,
	Run: func(cmd *cobra.Command, args []string) {
		config.InitConfig(configFile)
		if err := log.InitLog(config.Conf.AppName, config.Conf.Log); err != nil {
			fmt.Fprintf(os.Stderr, "日志初始化失败: %v\n", err)
			os.Exit(1)
		}
		log.Info("配置文件: %+v", config.Conf.Snapshot())

		if config.Conf.MetricPort > 0 {
			go func() {
				log.Info("启动监控..., URL: http://localhost:%d/debug/statsviz/", config.Conf.MetricPort)
				if err := metrics.Serve(fmt.Sprintf("0.0.0.0:%d", config.Conf.MetricPort)); err != nil {
					log.Error("监控服务退出: %v", err)
				}
			}()
		}

		if err := app.Run(context.Background()); err != nil {
			log.Error("发生异常: %v", err)
			os.Exit(-1)
		}
	},
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "configFile", "", "resource file")
	rootCmd.MarkFlagRequired("configFile")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("error happen: %#v", err)
		os.Exit(1)
	}
}
