package service

import (
	"sui-wallet/internal/chain/types"
	"sui-wallet/internal/keys"
)

// Ledger 远程账本的协作边界
// 钱包服务只通过该接口依赖链端：任何调用都可能超时、返回传输错误
// 或应用级错误，所有失败路径都必须降级而非导致服务崩溃。
// 生产实现为 vapi.Node，测试使用桩实现。
type Ledger interface {
	// GetRpcApiVersion 连通性探测，返回节点 API 版本
	GetRpcApiVersion() (string, error)

	// GetBalance 查询地址余额，单位为 MIST
	GetBalance(address string) (uint64, error)

	// TransferSui 签名并提交转账，返回链端分配的 digest
	TransferSui(kp *keys.Keypair, toAddr string, amountMist uint64) (string, error)

	// QueryTransactionDigests 查询地址发出的交易 digest 列表
	QueryTransactionDigests(address string, limit int) ([]string, error)

	// GetTransactionDetail 查询完整的交易详情；详情不全时必须返回错误
	GetTransactionDetail(digest string) (*types.TransactionDetail, error)
}
