package cli

import "github.com/urfave/cli/v2"

// All 返回所有可用的 CLI 命令列表
// 包括账户管理、转账、交易历史、水龙头、HTTP 服务等功能
func All() []*cli.Command {
	return []*cli.Command{
		WalletCmd,  // 钱包账户管理
		SendCmd,    // 发送转账交易
		HistoryCmd, // 交易历史查询
		FaucetCmd,  // 测试网水龙头
		ServeCmd,   // HTTP API 服务
	}
}
