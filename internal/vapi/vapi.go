package vapi

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/crypto/blake2b"

	"sui-wallet/internal/chain/types"
	"sui-wallet/internal/keys"
	"sui-wallet/internal/rpc"
)

var log = logging.Logger("vapi")

// SuiCoinType SUI 原生代币的类型标签
const SuiCoinType = "0x2::sui::SUI"

// intentTransactionData 交易签名的 intent 前缀
// scope=TransactionData(0), version=V0(0), app_id=Sui(0)
var intentTransactionData = []byte{0, 0, 0}

// Node Sui 全节点 API 客户端
// 封装了 RPC 客户端，提供与 Sui 网络交互的方法
type Node struct {
	*rpc.Client
	ctx context.Context
}

// NewNode 创建新的节点实例
// 使用给定的上下文和 RPC 客户端初始化节点
func NewNode(ctx context.Context, rpc *rpc.Client) *Node {
	log.Debugf("NewNode: creating new node instance")
	return &Node{rpc, ctx}
}

// GetRpcApiVersion 查询节点的 RPC API 版本
// 用于启动时的连通性探测
func (vapi *Node) GetRpcApiVersion() (string, error) {
	log.Debug("GetRpcApiVersion: querying node API version")
	var discovery types.RPCDiscovery
	err := vapi.Call(vapi.ctx, "rpc.discover", []interface{}{}, &discovery)
	if err != nil {
		log.Errorf("GetRpcApiVersion: failed to query version: %v", err)
		return "", fmt.Errorf("failed to get RPC API version: %w", err)
	}
	log.Debugf("GetRpcApiVersion: node reports version %s", discovery.Info.Version)
	return discovery.Info.Version, nil
}

// GetBalance 查询地址的 SUI 余额
// 返回最小单位（MIST）表示的总余额，查询失败时返回错误
func (vapi *Node) GetBalance(address string) (uint64, error) {
	log.Debugf("GetBalance: querying balance for %s", address)
	var balance types.Balance
	err := vapi.Call(vapi.ctx, "suix_getBalance", []interface{}{address, SuiCoinType}, &balance)
	if err != nil {
		log.Errorf("GetBalance: failed to query balance for %s: %v", address, err)
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	total, err := balance.TotalMist()
	if err != nil {
		log.Errorf("GetBalance: invalid balance value %q: %v", balance.TotalBalance, err)
		return 0, fmt.Errorf("invalid balance value: %w", err)
	}
	log.Debugf("GetBalance: balance for %s is %d MIST", address, total)
	return total, nil
}

// TransferSui 执行 SUI 转账
// 采用 split-and-transfer 模式：用发送方的 coin 对象构造 PaySui 交易
// （从 gas coin 拆分出指定金额并转给接收方），用私钥按 intent 方案签名后提交。
// 成功时返回链端分配的交易 digest。
func (vapi *Node) TransferSui(kp *keys.Keypair, toAddr string, amountMist uint64) (string, error) {
	fromAddr := kp.Address()
	log.Infof("TransferSui: sending %d MIST from %s to %s", amountMist, fromAddr, toAddr)

	// 取发送方的 coin 对象作为输入（同时用作 gas）
	var coins types.CoinPage
	err := vapi.Call(vapi.ctx, "suix_getCoins", []interface{}{fromAddr, SuiCoinType, nil, nil}, &coins)
	if err != nil {
		log.Errorf("TransferSui: failed to list coins for %s: %v", fromAddr, err)
		return "", fmt.Errorf("failed to list coins: %w", err)
	}
	if len(coins.Data) == 0 {
		log.Errorf("TransferSui: no coin objects owned by %s", fromAddr)
		return "", fmt.Errorf("no coin objects owned by %s", fromAddr)
	}
	coinIDs := make([]string, 0, len(coins.Data))
	for _, c := range coins.Data {
		coinIDs = append(coinIDs, c.CoinObjectID)
	}

	// 构造交易字节
	var txBytes types.TransactionBytes
	err = vapi.Call(vapi.ctx, "unsafe_paySui", []interface{}{
		fromAddr,
		coinIDs,
		[]string{toAddr},
		[]string{strconv.FormatUint(amountMist, 10)},
		strconv.FormatUint(types.DefaultGasBudget, 10),
	}, &txBytes)
	if err != nil {
		log.Errorf("TransferSui: failed to build transaction: %v", err)
		return "", fmt.Errorf("failed to build transaction: %w", err)
	}

	// 按 intent 方案签名
	signature, err := signTransaction(kp, txBytes.TxBytes)
	if err != nil {
		log.Errorf("TransferSui: failed to sign transaction: %v", err)
		return "", err
	}

	// 提交交易并等待本地执行结果
	var resp types.TransactionBlockResponse
	err = vapi.Call(vapi.ctx, "sui_executeTransactionBlock", []interface{}{
		txBytes.TxBytes,
		[]string{signature},
		map[string]bool{"showEffects": true, "showBalanceChanges": true},
		"WaitForLocalExecution",
	}, &resp)
	if err != nil {
		log.Errorf("TransferSui: failed to execute transaction: %v", err)
		return "", fmt.Errorf("failed to execute transaction: %w", err)
	}

	if resp.Effects != nil && resp.Effects.Status.Status != "success" {
		log.Errorf("TransferSui: transaction %s failed on chain: %s", resp.Digest, resp.Effects.Status.Error)
		return "", fmt.Errorf("transaction failed: %s", resp.Effects.Status.Error)
	}

	log.Infof("TransferSui: transfer successful, digest %s", resp.Digest)
	return resp.Digest, nil
}

// signTransaction 对 base64 编码的交易字节签名
// 摘要 = blake2b-256(intent_prefix || tx_bytes)，
// 序列化签名 = base64(scheme_flag || signature || pubkey)
func signTransaction(kp *keys.Keypair, txBytesB64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(txBytesB64)
	if err != nil {
		return "", fmt.Errorf("invalid transaction bytes: %w", err)
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	h.Write(intentTransactionData)
	h.Write(raw)
	digest := h.Sum(nil)

	sig := kp.Sign(digest)

	serialized := make([]byte, 0, 1+len(sig)+keys.AddressLength)
	serialized = append(serialized, keys.SchemeFlagEd25519)
	serialized = append(serialized, sig...)
	serialized = append(serialized, kp.Public()...)
	return base64.StdEncoding.EncodeToString(serialized), nil
}

// QueryTransactionDigests 查询地址发出的交易 digest 列表
// 按时间倒序，最多返回 limit 条
func (vapi *Node) QueryTransactionDigests(address string, limit int) ([]string, error) {
	log.Debugf("QueryTransactionDigests: querying transactions from %s (limit %d)", address, limit)

	var page types.TransactionQueryPage
	query := map[string]interface{}{
		"filter": map[string]string{"FromAddress": address},
	}
	err := vapi.Call(vapi.ctx, "suix_queryTransactionBlocks", []interface{}{query, nil, limit, true}, &page)
	if err != nil {
		log.Errorf("QueryTransactionDigests: query failed for %s: %v", address, err)
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}

	digests := make([]string, 0, len(page.Data))
	for _, d := range page.Data {
		digests = append(digests, d.Digest)
	}
	log.Debugf("QueryTransactionDigests: found %d digests for %s", len(digests), address)
	return digests, nil
}

// GetTransactionDetail 查询单笔交易的完整详情
// 无法解析出发送方、接收方和金额时返回错误，调用方不得缓存不完整的记录
func (vapi *Node) GetTransactionDetail(digest string) (*types.TransactionDetail, error) {
	log.Debugf("GetTransactionDetail: fetching detail for %s", digest)

	var resp types.TransactionBlockResponse
	options := map[string]bool{
		"showInput":          true,
		"showEffects":        true,
		"showBalanceChanges": true,
	}
	err := vapi.Call(vapi.ctx, "sui_getTransactionBlock", []interface{}{digest, options}, &resp)
	if err != nil {
		log.Errorf("GetTransactionDetail: fetch failed for %s: %v", digest, err)
		return nil, fmt.Errorf("failed to get transaction detail: %w", err)
	}

	detail := &types.TransactionDetail{
		Digest:      resp.Digest,
		FromAddress: resp.Transaction.Data.Sender,
	}
	if detail.FromAddress == "" {
		return nil, fmt.Errorf("transaction %s: sender missing", digest)
	}

	// 接收方 = 余额变动为正且不属于发送方的地址
	for _, change := range resp.BalanceChanges {
		if change.CoinType != SuiCoinType {
			continue
		}
		owner := change.Owner.AddressOwner
		if owner == "" || owner == detail.FromAddress {
			continue
		}
		mist, err := strconv.ParseInt(change.Amount, 10, 64)
		if err != nil || mist <= 0 {
			continue
		}
		detail.ToAddress = owner
		detail.Amount = types.MistToSui(uint64(mist))
		break
	}
	if detail.ToAddress == "" {
		return nil, fmt.Errorf("transaction %s: recipient not resolvable", digest)
	}

	if resp.TimestampMs != "" {
		if ms, err := strconv.ParseInt(resp.TimestampMs, 10, 64); err == nil {
			detail.Timestamp = time.UnixMilli(ms)
		}
	}
	if detail.Timestamp.IsZero() {
		detail.Timestamp = time.Now()
	}

	log.Debugf("GetTransactionDetail: resolved %s (%s -> %s, %f SUI)",
		digest, detail.FromAddress, detail.ToAddress, detail.Amount)
	return detail, nil
}
