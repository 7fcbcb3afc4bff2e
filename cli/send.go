package cli

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

// SendCmd 转账命令
// 用于在账户之间发送 SUI 代币
var SendCmd = &cli.Command{
	Name:      "send",
	Usage:     "发送 SUI 转账",
	ArgsUsage: "[目标地址] [金额(SUI)]",
	Before:    loadConfigBefore,
	Flags: []cli.Flag{
		&cli.UintFlag{
			Name:  "from",
			Usage: "指定发送方账户 ID（默认活动账户）",
		},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.Args().Len() < 2 {
			return fmt.Errorf("请指定目标地址和金额")
		}

		toAddr := cctx.Args().Get(0)

		amount, err := strconv.ParseFloat(cctx.Args().Get(1), 64)
		if err != nil {
			return fmt.Errorf("failed to parse amount: %w", err)
		}

		svc, _, err := openService(cctx)
		if err != nil {
			return err
		}

		// 未指定发送方时使用活动账户
		fromID := uint(cctx.Uint("from"))
		if fromID == 0 {
			active, err := svc.GetActiveAccount()
			if err != nil {
				return err
			}
			if active == nil {
				return fmt.Errorf("没有活动账户，请先创建账户")
			}
			fromID = active.ID
		}

		result := svc.SendTokens(fromID, toAddr, amount)
		if !result.Success {
			return fmt.Errorf("转账失败: %s", result.Error.Message)
		}

		color.Green("转账成功")
		fmt.Printf("Digest: %s\n", result.Digest)
		fmt.Printf("From:   %s\n", result.From)
		fmt.Printf("To:     %s\n", result.To)
		fmt.Printf("Amount: %g SUI\n", result.Amount)
		return nil
	},
}
