package service

import (
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"sui-wallet/internal/repository"
)

var log = logging.Logger("service")

// ConnState 钱包服务的连接状态
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateOfflineDegraded
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateOfflineDegraded:
		return "offline"
	default:
		return "unknown"
	}
}

// Options 服务构造参数
type Options struct {
	Network    string        // 网络名称，仅用于日志与展示
	MaxRetries int           // 启动连接最大尝试次数
	RetryDelay time.Duration // 两次尝试之间的等待时间
}

// Manager 钱包服务
// 编排账户仓库、密钥派生和远程账本客户端；由进程入口显式构造，
// 单实例生命周期由入口持有，通过引用传给请求层。
type Manager struct {
	store  *repository.Store
	ledger Ledger

	network string

	stateMu sync.Mutex
	state   ConnState

	// 账户变更（创建/删除）的服务级临界区，
	// 持有期间不做任何网络 I/O
	accountMu sync.Mutex
}

// NewManager 构造钱包服务并执行启动连接
// 连接按 Options 配置做有界同步重试；全部失败时服务进入离线降级状态，
// 本地账户操作仍然可用，转账被拒绝。连接失败记录日志，不中止启动。
func NewManager(store *repository.Store, ledger Ledger, opts Options) *Manager {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}

	m := &Manager{
		store:   store,
		ledger:  ledger,
		network: opts.Network,
		state:   StateDisconnected,
	}
	m.connect(opts.MaxRetries, opts.RetryDelay)
	return m
}

// connect 启动连接状态机
// Disconnected -> Connecting -> Connected，
// 或重试耗尽后 Disconnected -> Connecting -> OfflineDegraded
func (m *Manager) connect(maxRetries int, retryDelay time.Duration) {
	m.setState(StateConnecting)

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Infof("connect: connecting to Sui %s (attempt %d/%d)", m.network, attempt, maxRetries)

		version, err := m.ledger.GetRpcApiVersion()
		if err == nil {
			log.Infof("connect: successfully connected to Sui %s (RPC API %s)", m.network, version)
			m.setState(StateConnected)
			return
		}

		log.Warnf("connect: attempt %d failed: %v", attempt, err)
		if attempt < maxRetries && retryDelay > 0 {
			log.Infof("connect: retrying in %s", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	log.Errorf("connect: all %d connection attempts failed, running in offline mode", maxRetries)
	m.setState(StateOfflineDegraded)
}

func (m *Manager) setState(s ConnState) {
	m.stateMu.Lock()
	old := m.state
	m.state = s
	m.stateMu.Unlock()
	if old != s {
		log.Infof("setState: connection state %s -> %s", old, s)
	}
}

// State 返回当前连接状态
func (m *Manager) State() ConnState {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.state
}

// IsConnected 返回服务是否持有可用的网络连接
func (m *Manager) IsConnected() bool {
	return m.State() == StateConnected
}

// Network 返回配置的网络名称
func (m *Manager) Network() string {
	return m.network
}

// Store 返回底层存储，仅供入口层复用（例如关闭连接）
func (m *Manager) Store() *repository.Store {
	return m.store
}
