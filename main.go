package main

import (
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	cli2 "sui-wallet/cli"
	appcfg "sui-wallet/internal/config"
	"sui-wallet/lib/walletlog"
)

// logger 全局日志记录器
var log = logging.Logger("sui-wallet")

// main 程序入口函数
// 初始化 CLI 应用并启动命令行界面
func main() {
	// 设置全局日志级别为 INFO
	walletlog.SetupLogLevels()

	// 加载 TOML 配置文件
	if err := appcfg.Load(); err != nil {
		log.Fatal(err)
		return
	}

	// 创建 CLI 应用实例
	app := &cli.App{
		Name:    "sui-wallet",
		Usage:   "Sui 托管钱包后端，支持账户管理、转账、交易历史和测试网水龙头",
		Version: "1.0.0",

		Commands: cli2.All(),
	}

	// 运行 CLI 应用
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
