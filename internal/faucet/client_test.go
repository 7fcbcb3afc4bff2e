package faucet

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestTokensSuccess(t *testing.T) {
	var gotBody faucetRequestBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, NewLimiter())
	err := client.RequestTokens(context.Background(), testAddr)
	require.NoError(t, err)
	assert.Equal(t, testAddr, gotBody.FixedAmountRequest.Recipient)

	// 成功后进入本地冷却
	assert.True(t, client.Limiter().IsRateLimited(testAddr))
}

func TestRequestTokensLocalCooldownSkipsNetwork(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, NewLimiter())
	require.NoError(t, client.RequestTokens(context.Background(), testAddr))

	err := client.RequestTokens(context.Background(), testAddr)
	require.Error(t, err)
	assert.True(t, IsRateLimitError(err))
	assert.Equal(t, 1, calls)
}

func TestRequestTokensRemoteRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, NewLimiter())
	err := client.RequestTokens(context.Background(), testAddr)
	require.Error(t, err)

	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, CodeRateLimited, ferr.Code)
	assert.Equal(t, 2*time.Minute, ferr.RetryAfter)
}

func TestRequestTokensServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, NewLimiter())
	err := client.RequestTokens(context.Background(), testAddr)

	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, CodeServiceError, ferr.Code)
	assert.Equal(t, retryAfterServiceError, ferr.RetryAfter)
}

func TestRequestTokensUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, NewLimiter())
	err := client.RequestTokens(context.Background(), testAddr)

	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, CodeFaucetError, ferr.Code)
}

func TestRequestTokensTransportFailure(t *testing.T) {
	// 先关掉服务再请求，模拟传输失败
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(url, NewLimiter())
	err := client.RequestTokens(context.Background(), testAddr)

	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, CodeTransport, ferr.Code)

	// 传输失败也计入冷却
	assert.True(t, client.Limiter().IsRateLimited(testAddr))
}

func TestRequestTokensNoFaucet(t *testing.T) {
	client := NewClient("", NewLimiter())
	err := client.RequestTokens(context.Background(), testAddr)

	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, CodeUnavailable, ferr.Code)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, defaultRateLimitWait, parseRetryAfter(""))
	assert.Equal(t, defaultRateLimitWait, parseRetryAfter("soon"))
	assert.Equal(t, defaultRateLimitWait, parseRetryAfter("-5"))
	assert.Equal(t, 90*time.Second, parseRetryAfter("90"))
}
