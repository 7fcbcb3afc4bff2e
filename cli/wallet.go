package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	appcfg "sui-wallet/internal/config"
	"sui-wallet/internal/service"
	"sui-wallet/internal/ui/tablewriter"
)

type ctxKey string

const (
	CtxConfig ctxKey = "config"
)

// loadConfigBefore 加载配置并注入到 Context
// 各顶层命令共用的 Before 钩子
func loadConfigBefore(c *cli.Context) error {
	cfg, err := appcfg.LoadConfig()
	if err != nil {
		return err
	}

	c.Context = context.WithValue(c.Context, CtxConfig, cfg)

	return nil
}

// openService 按 Context 中的配置组装钱包服务
// 包含启动连接重试，失败时服务进入离线降级状态
func openService(cctx *cli.Context) (*service.Manager, *appcfg.Config, error) {
	cfg := cctx.Context.Value(CtxConfig).(*appcfg.Config)
	svc, err := service.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

// parseAccountID 解析账户 ID 参数
func parseAccountID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid account id: %q", arg)
	}
	return uint(id), nil
}

// WalletCmd 钱包管理命令
// 提供账户创建、列表、切换、删除、改名、余额查询、密钥导出等功能
var WalletCmd = &cli.Command{
	Name:   "wallet",
	Usage:  "钱包账户管理",
	Before: loadConfigBefore,

	Subcommands: []*cli.Command{
		walletNew,
		walletList,
		walletSwitch,
		walletRename,
		walletBalance,
		walletExport,
		walletDelete,
	},
}

// walletNew 创建新账户命令
// 生成 Ed25519 密钥对并加密入库，首个账户自动设为活动账户
var walletNew = &cli.Command{
	Name:      "new",
	Usage:     "创建新账户",
	ArgsUsage: "[昵称 (可选)]",
	Action: func(cctx *cli.Context) error {
		svc, _, err := openService(cctx)
		if err != nil {
			return err
		}

		account, err := svc.CreateAccount(cctx.Args().First())
		if err != nil {
			return err
		}

		fmt.Printf("Nickname: %s\n", account.Nickname)
		fmt.Printf("Address:  %s\n", account.Address)
		if account.IsActive {
			color.Green("该账户已设为活动账户")
		}

		return nil
	},
}

// walletList 列出账户命令
// 显示所有账户及其余额，活动账户带标记
var walletList = &cli.Command{
	Name:  "list",
	Usage: "列出所有账户",
	Action: func(cctx *cli.Context) error {
		svc, _, err := openService(cctx)
		if err != nil {
			return err
		}

		if !svc.IsConnected() {
			color.Yellow("当前处于离线模式，余额不可用")
		}

		accounts, err := svc.GetAllAccounts()
		if err != nil {
			return err
		}

		tw := tablewriter.New("ID", "Nickname", "Address", "Balance(SUI)", "Active")

		for _, account := range accounts {
			active := ""
			if account.IsActive {
				active = color.GreenString("*")
			}
			tw.Write(map[string]interface{}{
				"ID":           account.ID,
				"Nickname":     account.Nickname,
				"Address":      account.Address,
				"Balance(SUI)": fmt.Sprintf("%g", account.Balance),
				"Active":       active,
			})
		}

		return tw.Flush(os.Stdout)
	},
}

// walletSwitch 切换活动账户命令
var walletSwitch = &cli.Command{
	Name:      "switch",
	Usage:     "切换活动账户",
	ArgsUsage: "[账户 ID]",
	Action: func(cctx *cli.Context) error {
		if !cctx.Args().Present() {
			return fmt.Errorf("请指定要切换的账户 ID")
		}

		id, err := parseAccountID(cctx.Args().First())
		if err != nil {
			return err
		}

		svc, _, err := openService(cctx)
		if err != nil {
			return err
		}

		account, err := svc.SwitchAccount(id)
		if err != nil {
			return err
		}

		color.Green("已切换到账户 %s (%s)", account.Nickname, account.Address)
		return nil
	},
}

// walletRename 修改账户昵称命令
var walletRename = &cli.Command{
	Name:      "rename",
	Usage:     "修改账户昵称",
	ArgsUsage: "[账户 ID] [新昵称]",
	Action: func(cctx *cli.Context) error {
		if cctx.Args().Len() < 2 {
			return fmt.Errorf("请指定账户 ID 和新昵称")
		}

		id, err := parseAccountID(cctx.Args().Get(0))
		if err != nil {
			return err
		}

		svc, _, err := openService(cctx)
		if err != nil {
			return err
		}

		if err := svc.UpdateNickname(id, cctx.Args().Get(1)); err != nil {
			return err
		}

		fmt.Printf("账户 %d 昵称已更新为 %s\n", id, cctx.Args().Get(1))
		return nil
	},
}

// walletBalance 查询余额命令
// 不带参数时查询活动账户的余额
var walletBalance = &cli.Command{
	Name:      "balance",
	Usage:     "查询地址余额",
	ArgsUsage: "[地址 (可选，默认活动账户)]",
	Action: func(cctx *cli.Context) error {
		svc, _, err := openService(cctx)
		if err != nil {
			return err
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

		if !svc.IsConnected() {
			return fmt.Errorf("当前处于离线模式，无法查询余额")
		}

		fmt.Printf("Address: %s\n", address)
		fmt.Printf("Balance: %g SUI\n", svc.GetBalance(address))
		return nil
	},
}

// walletExport 导出密钥命令
// 输出 base64 keystring（含方案标志字节与种子）
var walletExport = &cli.Command{
	Name:      "export",
	Usage:     "导出账户密钥",
	ArgsUsage: "[账户 ID]",
	Action: func(cctx *cli.Context) error {
		if !cctx.Args().Present() {
			return fmt.Errorf("请指定要导出的账户 ID")
		}

		id, err := parseAccountID(cctx.Args().First())
		if err != nil {
			return err
		}

		svc, _, err := openService(cctx)
		if err != nil {
			return err
		}

		keystring, err := svc.GetKeystring(id)
		if err != nil {
			return err
		}

		fmt.Println(keystring)
		return nil
	},
}

// walletDelete 删除账户命令
var walletDelete = &cli.Command{
	Name:      "del",
	Usage:     "删除账户",
	ArgsUsage: "[账户 ID]",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "force",
			Usage: "强制删除，不需要确认",
		},
	},
	Action: func(cctx *cli.Context) error {
		if !cctx.Args().Present() {
			return fmt.Errorf("请指定要删除的账户 ID")
		}

		id, err := parseAccountID(cctx.Args().First())
		if err != nil {
			return err
		}

		svc, _, err := openService(cctx)
		if err != nil {
			return err
		}

		account, err := svc.GetAccount(id)
		if err != nil {
			return err
		}

		// 如果没有 --force 标志，请求确认
		if !cctx.Bool("force") {
			fmt.Printf("确定要删除账户 %s (%s) 吗？此操作不可恢复！\n", account.Nickname, account.Address)
			fmt.Print("输入 'yes' 确认: ")
			reader := bufio.NewReader(os.Stdin)
			confirm, _ := reader.ReadString('\n')
			if strings.TrimSpace(confirm) != "yes" {
				fmt.Println("已取消删除操作")
				return nil
			}
		}

		if err := svc.DeleteAccount(id); err != nil {
			return err
		}

		color.Green("已成功删除账户 %s", account.Nickname)
		return nil
	},
}
