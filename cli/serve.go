package cli

import (
	"github.com/urfave/cli/v2"

	"sui-wallet/api"
	"sui-wallet/internal/faucet"
)

// ServeCmd 启动 HTTP 服务命令
// 在服务进程内共享同一个钱包服务与水龙头限流器
var ServeCmd = &cli.Command{
	Name:   "serve",
	Usage:  "启动钱包 HTTP API 服务",
	Before: loadConfigBefore,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "listen",
			Usage: "HTTP 监听地址，覆盖配置文件",
		},
	},
	Action: func(cctx *cli.Context) error {
		svc, cfg, err := openService(cctx)
		if err != nil {
			return err
		}

		listen := cfg.Listen
		if v := cctx.String("listen"); v != "" {
			listen = v
		}

		// 主网没有水龙头，此时不挂水龙头路由后端
		var faucetClient *faucet.Client
		if cfg.FaucetURL != "" {
			faucetClient = faucet.NewClient(cfg.FaucetURL, faucet.NewLimiter())
		}

		return api.NewServer(svc, faucetClient).ListenAndServe(listen)
	},
}
