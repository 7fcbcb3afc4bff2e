package faucet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// 水龙头请求结果的错误码
const (
	CodeRateLimited  = "rate_limited"  // 429 或本地冷却期内
	CodeServiceError = "service_error" // 500
	CodeFaucetError  = "faucet_error"  // 其他非成功响应
	CodeTransport    = "transport_error"
	CodeUnavailable  = "unavailable" // 当前网络没有水龙头
)

// 各失败类别推荐的重试间隔
const (
	retryAfterServiceError = 5 * time.Minute
	retryAfterGeneric      = 2 * time.Minute
	defaultRateLimitWait   = 10 * time.Minute
)

// Error 水龙头请求失败
// RetryAfter 为推荐给调用方的重试等待时间
type Error struct {
	Code       string        `json:"code"`
	Message    string        `json:"message"`
	RetryAfter time.Duration `json:"retryAfter"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("faucet %s: %s", e.Code, e.Message)
}

// fixedAmountRequest 测试网水龙头的请求体格式
type fixedAmountRequest struct {
	Recipient string `json:"recipient"`
}

type faucetRequestBody struct {
	FixedAmountRequest fixedAmountRequest `json:"FixedAmountRequest"`
}

// Client 测试网水龙头客户端
// 每次请求先经过本地限流器，结果无论成败都回写限流状态
type Client struct {
	url     string
	client  *http.Client
	limiter *Limiter
}

// NewClient 创建水龙头客户端
// url 为空表示当前网络没有水龙头（主网）
func NewClient(url string, limiter *Limiter) *Client {
	if limiter == nil {
		limiter = NewLimiter()
	}
	return &Client{
		url:     url,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: limiter,
	}
}

// Limiter 返回客户端使用的限流器
func (c *Client) Limiter() *Limiter { return c.limiter }

// RequestTokens 向水龙头申请测试代币
// 本地冷却期内的请求直接拒绝，不发起网络调用；
// 响应码 200/201 视为成功，429（可带 Retry-After 头）、500 和
// 其他状态分别映射为不同的错误码及推荐重试间隔。
func (c *Client) RequestTokens(ctx context.Context, address string) error {
	if c.url == "" {
		return &Error{Code: CodeUnavailable, Message: "no faucet configured for this network"}
	}

	// 本地限流：冷却期内不发出请求
	if remaining := c.limiter.RemainingCooldown(address); remaining > 0 {
		log.Infof("RequestTokens: %s locally rate limited for another %s", address, remaining)
		return &Error{
			Code:       CodeRateLimited,
			Message:    fmt.Sprintf("rate limited, retry in %s", remaining.Round(time.Second)),
			RetryAfter: remaining,
		}
	}

	body, err := json.Marshal(faucetRequestBody{
		FixedAmountRequest: fixedAmountRequest{Recipient: address},
	})
	if err != nil {
		return &Error{Code: CodeTransport, Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(body))
	if err != nil {
		return &Error{Code: CodeTransport, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	log.Infof("RequestTokens: requesting faucet tokens for %s", address)
	resp, err := c.client.Do(req)
	if err != nil {
		// 传输失败也计为一次失败，抬高后续冷却档位
		c.limiter.RecordOutcome(address, false, 0)
		log.Errorf("RequestTokens: request failed: %v", err)
		return &Error{Code: CodeTransport, Message: err.Error(), RetryAfter: retryAfterGeneric}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		c.limiter.RecordOutcome(address, true, 0)
		log.Infof("RequestTokens: faucet request for %s accepted", address)
		return nil

	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		c.limiter.RecordOutcome(address, false, retryAfter)
		log.Warnf("RequestTokens: faucet rate limited %s, retry after %s", address, retryAfter)
		return &Error{
			Code:       CodeRateLimited,
			Message:    "faucet rate limit exceeded",
			RetryAfter: retryAfter,
		}

	case http.StatusInternalServerError:
		c.limiter.RecordOutcome(address, false, 0)
		log.Errorf("RequestTokens: faucet service error for %s", address)
		return &Error{
			Code:       CodeServiceError,
			Message:    "faucet service error",
			RetryAfter: retryAfterServiceError,
		}

	default:
		c.limiter.RecordOutcome(address, false, 0)
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Errorf("RequestTokens: unexpected faucet response %d: %s", resp.StatusCode, msg)
		return &Error{
			Code:       CodeFaucetError,
			Message:    fmt.Sprintf("unexpected faucet response %d", resp.StatusCode),
			RetryAfter: retryAfterGeneric,
		}
	}
}

// parseRetryAfter 解析 Retry-After 响应头（秒数格式）
// 缺失或无法解析时使用默认等待时间
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return defaultRateLimitWait
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultRateLimitWait
}

// IsRateLimitError 判断错误是否为限流类错误
func IsRateLimitError(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Code == CodeRateLimited
}
