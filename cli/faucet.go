package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"sui-wallet/internal/faucet"
)

// FaucetCmd 水龙头命令
// 向测试网水龙头申请代币，带本地冷却限流
var FaucetCmd = &cli.Command{
	Name:      "faucet",
	Usage:     "向测试网水龙头申请代币",
	ArgsUsage: "[地址 (可选，默认活动账户)]",
	Before:    loadConfigBefore,
	Action: func(cctx *cli.Context) error {
		svc, cfg, err := openService(cctx)
		if err != nil {
			return err
		}

		if cfg.FaucetURL == "" {
			return fmt.Errorf("网络 %s 没有可用的水龙头", cfg.NetworkName)
		}

		address := cctx.Args().First()
		if address == "" {
			active, err := svc.GetActiveAccount()
			if err != nil {
				return err
			}
			if active == nil {
				return fmt.Errorf("没有活动账户，请先创建账户")
			}
			address = active.Address
		}

		client := faucet.NewClient(cfg.FaucetURL, nil)
		if err := client.RequestTokens(cctx.Context, address); err != nil {
			var ferr *faucet.Error
			if faucet.IsRateLimitError(err) && errors.As(err, &ferr) && ferr.RetryAfter > 0 {
				return fmt.Errorf("请求过于频繁，请在 %s 后重试", ferr.RetryAfter.Round(time.Second))
			}
			return err
		}

		color.Green("水龙头请求已受理，代币稍后到账")
		fmt.Printf("Address: %s\n", address)
		return nil
	},
}
