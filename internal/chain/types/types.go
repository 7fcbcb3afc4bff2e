package types

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// MistPerSui 1 SUI 对应的最小单位（MIST）数量
const MistPerSui = uint64(1_000_000_000)

// DefaultGasBudget 转账交易的默认 Gas 预算（MIST）
const DefaultGasBudget = uint64(2_000_000)

// MistToSui 将最小单位余额换算为显示单位
func MistToSui(mist uint64) float64 {
	return float64(mist) / float64(MistPerSui)
}

// SuiToMist 将显示单位金额换算为最小单位
// 金额为负或超出 uint64 表示范围时返回错误
func SuiToMist(amount float64) (uint64, error) {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("invalid amount: %v", amount)
	}
	mist := amount * float64(MistPerSui)
	if mist > float64(math.MaxUint64) {
		return 0, fmt.Errorf("amount out of range: %v", amount)
	}
	return uint64(mist), nil
}

// TransactionDetail 从链端查询到的完整交易详情
// 只有拿到完整详情的交易才会进入本地缓存
type TransactionDetail struct {
	Digest      string
	FromAddress string
	ToAddress   string
	Amount      float64
	Timestamp   time.Time
}

// RPCDiscovery rpc.discover 响应
type RPCDiscovery struct {
	Info struct {
		Title   string `json:"title"`
		Version string `json:"version"`
	} `json:"info"`
}

// Balance suix_getBalance 响应
type Balance struct {
	CoinType        string `json:"coinType"`
	CoinObjectCount int    `json:"coinObjectCount"`
	TotalBalance    string `json:"totalBalance"`
}

// TotalMist 解析最小单位表示的总余额
func (b *Balance) TotalMist() (uint64, error) {
	return strconv.ParseUint(b.TotalBalance, 10, 64)
}

// Coin suix_getCoins 返回的单个 coin 对象
type Coin struct {
	CoinType     string `json:"coinType"`
	CoinObjectID string `json:"coinObjectId"`
	Balance      string `json:"balance"`
}

// CoinPage suix_getCoins 响应
type CoinPage struct {
	Data        []Coin `json:"data"`
	HasNextPage bool   `json:"hasNextPage"`
}

// TransactionBytes unsafe_paySui 等交易构造接口的响应
type TransactionBytes struct {
	TxBytes string `json:"txBytes"`
}

// ExecutionStatus 交易执行状态
type ExecutionStatus struct {
	Status string `json:"status"` // "success" / "failure"
	Error  string `json:"error,omitempty"`
}

// TransactionEffects 交易执行效果（节选）
type TransactionEffects struct {
	Status ExecutionStatus `json:"status"`
}

// BalanceChange 交易引起的余额变动
type BalanceChange struct {
	Owner struct {
		AddressOwner string `json:"AddressOwner"`
	} `json:"owner"`
	CoinType string `json:"coinType"`
	Amount   string `json:"amount"` // 有符号十进制字符串
}

// TransactionBlockResponse sui_executeTransactionBlock / sui_getTransactionBlock 响应
type TransactionBlockResponse struct {
	Digest      string `json:"digest"`
	TimestampMs string `json:"timestampMs,omitempty"`
	Transaction struct {
		Data struct {
			Sender string `json:"sender"`
		} `json:"data"`
	} `json:"transaction,omitempty"`
	Effects        *TransactionEffects `json:"effects,omitempty"`
	BalanceChanges []BalanceChange     `json:"balanceChanges,omitempty"`
}

// TransactionQueryPage suix_queryTransactionBlocks 响应
type TransactionQueryPage struct {
	Data []struct {
		Digest string `json:"digest"`
	} `json:"data"`
	HasNextPage bool `json:"hasNextPage"`
}
