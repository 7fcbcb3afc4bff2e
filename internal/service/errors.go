package service

import "fmt"

// ErrorCode 服务边界的机器可读错误分类
type ErrorCode string

const (
	CodeNotConnected        ErrorCode = "not_connected"
	CodeAccountNotFound     ErrorCode = "account_not_found"
	CodeDuplicateAddress    ErrorCode = "duplicate_address"
	CodeLastAccount         ErrorCode = "last_account"
	CodeInsufficientBalance ErrorCode = "insufficient_balance"
	CodeCryptoFailure       ErrorCode = "crypto_failure"
	CodeStorageFailure      ErrorCode = "storage_failure"
	CodeLedgerFailure       ErrorCode = "ledger_failure"
	CodeInvalidRequest      ErrorCode = "invalid_request"
)

// WalletError 服务层错误
// 每个服务操作的失败都携带错误分类和人类可读的描述，
// 不允许未分类的故障穿过服务边界
type WalletError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *WalletError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// newError 构造服务层错误
func newError(code ErrorCode, format string, args ...interface{}) *WalletError {
	return &WalletError{Code: code, Message: fmt.Sprintf(format, args...)}
}
