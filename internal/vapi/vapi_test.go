package vapi

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"sui-wallet/internal/keys"
	"sui-wallet/internal/rpc"
)

// rpcStub 按方法名分发响应的 JSON-RPC 桩节点
type rpcStub struct {
	t        *testing.T
	handlers map[string]func(params []json.RawMessage) interface{}
	calls    []string
}

func (s *rpcStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
		ID     int               `json:"id"`
	}
	require.NoError(s.t, json.NewDecoder(r.Body).Decode(&req))
	s.calls = append(s.calls, req.Method)

	handler, ok := s.handlers[req.Method]
	if !ok {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0", "id": req.ID,
			"error": map[string]interface{}{"code": -32601, "message": "method not found"},
		})
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0", "id": req.ID, "result": handler(req.Params),
	})
}

func newStubNode(t *testing.T, handlers map[string]func(params []json.RawMessage) interface{}) (*Node, *rpcStub) {
	t.Helper()

	stub := &rpcStub{t: t, handlers: handlers}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	client := rpc.NewClient(srv.URL, time.Second)
	return NewNode(context.Background(), client), stub
}

func TestGetRpcApiVersion(t *testing.T) {
	node, _ := newStubNode(t, map[string]func(params []json.RawMessage) interface{}{
		"rpc.discover": func([]json.RawMessage) interface{} {
			return map[string]interface{}{"info": map[string]string{"title": "Sui JSON-RPC", "version": "1.39.0"}}
		},
	})

	version, err := node.GetRpcApiVersion()
	require.NoError(t, err)
	assert.Equal(t, "1.39.0", version)
}

func TestGetBalance(t *testing.T) {
	node, _ := newStubNode(t, map[string]func(params []json.RawMessage) interface{}{
		"suix_getBalance": func(params []json.RawMessage) interface{} {
			var coinType string
			require.NoError(t, json.Unmarshal(params[1], &coinType))
			assert.Equal(t, SuiCoinType, coinType)
			return map[string]interface{}{"coinType": SuiCoinType, "coinObjectCount": 2, "totalBalance": "3000000000"}
		},
	})

	mist, err := node.GetBalance("0xabc")
	require.NoError(t, err)
	assert.Equal(t, uint64(3_000_000_000), mist)
}

func TestGetBalanceInvalidValue(t *testing.T) {
	node, _ := newStubNode(t, map[string]func(params []json.RawMessage) interface{}{
		"suix_getBalance": func([]json.RawMessage) interface{} {
			return map[string]interface{}{"totalBalance": "not-a-number"}
		},
	})

	_, err := node.GetBalance("0xabc")
	assert.Error(t, err)
}

func TestTransferSui(t *testing.T) {
	kp, err := keys.Generate()
	require.NoError(t, err)

	txData := []byte("serialized-transaction-data")
	txBytesB64 := base64.StdEncoding.EncodeToString(txData)

	var gotSignature string
	node, stub := newStubNode(t, map[string]func(params []json.RawMessage) interface{}{
		"suix_getCoins": func([]json.RawMessage) interface{} {
			return map[string]interface{}{
				"data": []map[string]string{
					{"coinType": SuiCoinType, "coinObjectId": "0xcoin1", "balance": "5000000000"},
				},
				"hasNextPage": false,
			}
		},
		"unsafe_paySui": func(params []json.RawMessage) interface{} {
			var sender string
			require.NoError(t, json.Unmarshal(params[0], &sender))
			assert.Equal(t, kp.Address(), sender)
			return map[string]string{"txBytes": txBytesB64}
		},
		"sui_executeTransactionBlock": func(params []json.RawMessage) interface{} {
			var sigs []string
			require.NoError(t, json.Unmarshal(params[1], &sigs))
			require.Len(t, sigs, 1)
			gotSignature = sigs[0]
			return map[string]interface{}{
				"digest":  "FakeDigest111",
				"effects": map[string]interface{}{"status": map[string]string{"status": "success"}},
			}
		},
	})

	digest, err := node.TransferSui(kp, "0xrecipient", 1_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, "FakeDigest111", digest)
	assert.Equal(t, []string{"suix_getCoins", "unsafe_paySui", "sui_executeTransactionBlock"}, stub.calls)

	// 序列化签名 = base64(flag || sig || pubkey)，摘要按 intent 方案计算
	raw, err := base64.StdEncoding.DecodeString(gotSignature)
	require.NoError(t, err)
	require.Len(t, raw, 1+ed25519.SignatureSize+ed25519.PublicKeySize)
	assert.Equal(t, keys.SchemeFlagEd25519, raw[0])
	assert.Equal(t, []byte(kp.Public()), raw[1+ed25519.SignatureSize:])

	h, err := blake2b.New256(nil)
	require.NoError(t, err)
	h.Write(intentTransactionData)
	h.Write(txData)
	assert.True(t, ed25519.Verify(kp.Public(), h.Sum(nil), raw[1:1+ed25519.SignatureSize]))
}

func TestTransferSuiNoCoins(t *testing.T) {
	kp, err := keys.Generate()
	require.NoError(t, err)

	node, _ := newStubNode(t, map[string]func(params []json.RawMessage) interface{}{
		"suix_getCoins": func([]json.RawMessage) interface{} {
			return map[string]interface{}{"data": []interface{}{}, "hasNextPage": false}
		},
	})

	_, err = node.TransferSui(kp, "0xrecipient", 1)
	assert.ErrorContains(t, err, "no coin objects")
}

func TestTransferSuiOnChainFailure(t *testing.T) {
	kp, err := keys.Generate()
	require.NoError(t, err)

	node, _ := newStubNode(t, map[string]func(params []json.RawMessage) interface{}{
		"suix_getCoins": func([]json.RawMessage) interface{} {
			return map[string]interface{}{
				"data":        []map[string]string{{"coinObjectId": "0xcoin1"}},
				"hasNextPage": false,
			}
		},
		"unsafe_paySui": func([]json.RawMessage) interface{} {
			return map[string]string{"txBytes": base64.StdEncoding.EncodeToString([]byte("tx"))}
		},
		"sui_executeTransactionBlock": func([]json.RawMessage) interface{} {
			return map[string]interface{}{
				"digest": "FailedDigest",
				"effects": map[string]interface{}{
					"status": map[string]string{"status": "failure", "error": "InsufficientGas"},
				},
			}
		},
	})

	_, err = node.TransferSui(kp, "0xrecipient", 1)
	assert.ErrorContains(t, err, "InsufficientGas")
}

func TestQueryTransactionDigests(t *testing.T) {
	node, _ := newStubNode(t, map[string]func(params []json.RawMessage) interface{}{
		"suix_queryTransactionBlocks": func(params []json.RawMessage) interface{} {
			var query struct {
				Filter map[string]string `json:"filter"`
			}
			require.NoError(t, json.Unmarshal(params[0], &query))
			assert.Equal(t, "0xabc", query.Filter["FromAddress"])
			return map[string]interface{}{
				"data":        []map[string]string{{"digest": "d1"}, {"digest": "d2"}},
				"hasNextPage": false,
			}
		},
	})

	digests, err := node.QueryTransactionDigests("0xabc", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2"}, digests)
}

func TestGetTransactionDetail(t *testing.T) {
	node, _ := newStubNode(t, map[string]func(params []json.RawMessage) interface{}{
		"sui_getTransactionBlock": func([]json.RawMessage) interface{} {
			return map[string]interface{}{
				"digest":      "d1",
				"timestampMs": "1700000000000",
				"transaction": map[string]interface{}{"data": map[string]string{"sender": "0xsender"}},
				"balanceChanges": []map[string]interface{}{
					// 发送方的负变动要跳过
					{"owner": map[string]string{"AddressOwner": "0xsender"}, "coinType": SuiCoinType, "amount": "-1500000000"},
					{"owner": map[string]string{"AddressOwner": "0xreceiver"}, "coinType": SuiCoinType, "amount": "1000000000"},
				},
			}
		},
	})

	detail, err := node.GetTransactionDetail("d1")
	require.NoError(t, err)
	assert.Equal(t, "d1", detail.Digest)
	assert.Equal(t, "0xsender", detail.FromAddress)
	assert.Equal(t, "0xreceiver", detail.ToAddress)
	assert.Equal(t, 1.0, detail.Amount)
	assert.Equal(t, time.UnixMilli(1700000000000), detail.Timestamp)
}

func TestGetTransactionDetailUnresolvable(t *testing.T) {
	// 没有接收方变动的交易必须报错而不是返回半成品
	node, _ := newStubNode(t, map[string]func(params []json.RawMessage) interface{}{
		"sui_getTransactionBlock": func([]json.RawMessage) interface{} {
			return map[string]interface{}{
				"digest":      "d1",
				"transaction": map[string]interface{}{"data": map[string]string{"sender": "0xsender"}},
				"balanceChanges": []map[string]interface{}{
					{"owner": map[string]string{"AddressOwner": "0xsender"}, "coinType": SuiCoinType, "amount": "-1000000"},
				},
			}
		},
	})

	_, err := node.GetTransactionDetail("d1")
	assert.ErrorContains(t, err, "recipient not resolvable")

	// 发送方缺失同样报错
	node, _ = newStubNode(t, map[string]func(params []json.RawMessage) interface{}{
		"sui_getTransactionBlock": func([]json.RawMessage) interface{} {
			return map[string]interface{}{"digest": "d1"}
		},
	})
	_, err = node.GetTransactionDetail("d1")
	assert.ErrorContains(t, err, "sender missing")
}
