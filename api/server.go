package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	logging "github.com/ipfs/go-log/v2"

	"sui-wallet/internal/faucet"
	"sui-wallet/internal/service"
)

var log = logging.Logger("api")

// Server 薄 HTTP 层
// 只做请求/响应映射，业务语义全部在钱包服务内；
// 实体到 JSON 的序列化发生在这一边界，不在核心内部。
type Server struct {
	svc    *service.Manager
	faucet *faucet.Client
}

// NewServer 创建 HTTP 服务
// faucetClient 可为 nil（主网没有水龙头）
func NewServer(svc *service.Manager, faucetClient *faucet.Client) *Server {
	return &Server{svc: svc, faucet: faucetClient}
}

// Router 组装全部路由
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleHealth).Methods("GET")
	r.HandleFunc("/api/health", s.handleHealth).Methods("GET")

	r.HandleFunc("/api/accounts", s.handleGetAccounts).Methods("GET")
	r.HandleFunc("/api/accounts/active", s.handleGetActiveAccount).Methods("GET")
	r.HandleFunc("/api/accounts/create", s.handleCreateAccount).Methods("POST")
	r.HandleFunc("/api/accounts/switch", s.handleSwitchAccount).Methods("POST")
	r.HandleFunc("/api/accounts/{id:[0-9]+}", s.handleDeleteAccount).Methods("DELETE")
	r.HandleFunc("/api/accounts/{id:[0-9]+}/nickname", s.handleUpdateNickname).Methods("PUT")

	r.HandleFunc("/api/send", s.handleSend).Methods("POST")
	r.HandleFunc("/api/transactions/{address}", s.handleGetTransactions).Methods("GET")
	r.HandleFunc("/api/transactions/{address}/stats", s.handleGetStats).Methods("GET")
	r.HandleFunc("/api/balance/{address}", s.handleGetBalance).Methods("GET")

	r.HandleFunc("/api/faucet", s.handleFaucet).Methods("POST")

	return r
}

// ListenAndServe 启动 HTTP 服务
func (s *Server) ListenAndServe(listen string) error {
	log.Infof("ListenAndServe: Sui wallet backend listening on %s", listen)
	return http.ListenAndServe(listen, s.Router())
}

// envelope 统一响应信封
type envelope map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("writeJSON: failed to encode response: %v", err)
	}
}

// writeServiceError 把服务层错误映射为响应信封
// 领域失败返回 200 + success:false，保持与前端的既有契约
func writeServiceError(w http.ResponseWriter, err error) {
	var werr *service.WalletError
	if errors.As(err, &werr) {
		writeJSON(w, http.StatusOK, envelope{"success": false, "error": werr.Message, "code": werr.Code})
		return
	}
	writeJSON(w, http.StatusInternalServerError, envelope{"success": false, "error": err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{
		"success":           true,
		"status":            "running",
		"service":           "Sui Wallet Backend",
		"network":           s.svc.Network(),
		"network_connected": s.svc.IsConnected(),
	})
}

func (s *Server) handleGetAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.svc.GetAllAccounts()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "accounts": accounts, "count": len(accounts)})
}

func (s *Server) handleGetActiveAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.svc.GetActiveAccount()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "account": account})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nickname string `json:"nickname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{"success": false, "error": "invalid JSON body"})
		return
	}

	account, err := s.svc.CreateAccount(req.Nickname)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"account": account,
		"message": "Account " + account.Nickname + " created successfully",
	})
}

func (s *Server) handleSwitchAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID uint `json:"account_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccountID == 0 {
		writeJSON(w, http.StatusBadRequest, envelope{"success": false, "error": "account_id required"})
		return
	}

	account, err := s.svc.SwitchAccount(req.AccountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"account": account,
		"message": "Switched to " + account.Nickname,
	})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err := s.svc.DeleteAccount(uint(id)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "Account deleted"})
}

func (s *Server) handleUpdateNickname(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)

	var req struct {
		Nickname string `json:"nickname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{"success": false, "error": "invalid JSON body"})
		return
	}

	if err := s.svc.UpdateNickname(uint(id), req.Nickname); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "Nickname updated"})
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FromAccountID uint    `json:"from_account_id"`
		ToAddress     string  `json:"to_address"`
		Amount        float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{"success": false, "error": "invalid JSON body"})
		return
	}
	if req.FromAccountID == 0 || req.ToAddress == "" || req.Amount == 0 {
		writeJSON(w, http.StatusBadRequest, envelope{
			"success": false,
			"error":   "missing required fields: from_account_id, to_address, amount",
		})
		return
	}

	result := s.svc.SendTokens(req.FromAccountID, req.ToAddress, req.Amount)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetTransactions(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	txs, err := s.svc.GetTransactionHistory(address, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "transactions": txs, "count": len(txs)})
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	stats, err := s.svc.GetTransactionStats(address)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "address": address, "stats": stats})
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"address": address,
		"balance": s.svc.GetBalance(address),
	})
}

func (s *Server) handleFaucet(w http.ResponseWriter, r *http.Request) {
	if s.faucet == nil {
		writeJSON(w, http.StatusOK, envelope{"success": false, "error": "no faucet available for this network"})
		return
	}

	var req struct {
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Address == "" {
		writeJSON(w, http.StatusBadRequest, envelope{"success": false, "error": "address required"})
		return
	}

	if err := s.faucet.RequestTokens(r.Context(), req.Address); err != nil {
		var ferr *faucet.Error
		if errors.As(err, &ferr) {
			writeJSON(w, http.StatusOK, envelope{
				"success":     false,
				"error":       ferr.Message,
				"code":        ferr.Code,
				"retry_after": int(ferr.RetryAfter.Seconds()),
			})
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "Faucet request accepted"})
}
