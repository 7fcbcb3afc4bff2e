package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"sui-wallet/internal/ui/tablewriter"
)

// HistoryCmd 交易历史命令
// 先从链上刷新本地缓存，再按地址列出交易记录
var HistoryCmd = &cli.Command{
	Name:      "history",
	Usage:     "查询交易历史",
	ArgsUsage: "[地址 (可选，默认活动账户)]",
	Before:    loadConfigBefore,
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "limit",
			Usage: "返回的最大记录数",
			Value: 20,
		},
		&cli.BoolFlag{
			Name:  "stats",
			Usage: "显示汇总统计而非记录列表",
		},
	},
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

		if cctx.Bool("stats") {
			stats, err := svc.GetTransactionStats(address)
			if err != nil {
				return err
			}
			fmt.Printf("Address:       %s\n", address)
			fmt.Printf("Total sent:    %g SUI\n", stats.TotalSent)
			fmt.Printf("Total received:%g SUI\n", stats.TotalReceived)
			fmt.Printf("Net flow:      %g SUI\n", stats.NetFlow)
			fmt.Printf("Transactions:  %d\n", stats.TotalTransactions)
			return nil
		}

		txs, err := svc.GetTransactionHistory(address, cctx.Int("limit"))
		if err != nil {
			return err
		}

		tw := tablewriter.New("Digest", "From", "To", "Amount(SUI)", "Status", "Time")

		for _, tx := range txs {
			tw.Write(map[string]interface{}{
				"Digest":      tx.Digest,
				"From":        tx.FromAddress,
				"To":          tx.ToAddress,
				"Amount(SUI)": fmt.Sprintf("%g", tx.Amount),
				"Status":      tx.Status,
				"Time":        tx.Timestamp.Format(time.RFC3339),
			})
		}

		return tw.Flush(os.Stdout)
	},
}
