package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/omidrahimi/hawala_system/internal/httputil"
	"github.com/omidrahimi/hawala_system/internal/ledger"
	"github.com/omidrahimi/hawala_system/internal/logger"
	"github.com/omidrahimi/hawala_system/internal/metrics"
	"github.com/omidrahimi/hawala_system/internal/models"
)

type createAgentRequest struct {
	Name            string          `json:"name"`
	Province        string          `json:"province"`
	Phone           string          `json:"phone"`
	Tazkira         string          `json:"tazkira"`
	Password        string          `json:"password"`
	OpeningBalance  decimal.Decimal `json:"opening_balance"`
	OpeningCurrency string          `json:"opening_currency"`
}

func (h *Handler) CreateAgentHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req createAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Password) < 6 {
		httputil.WriteError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	agent, err := h.Engine.CreateAgent(actor, ledger.CreateAgentParams{
		Name:            req.Name,
		Province:        req.Province,
		Phone:           req.Phone,
		Tazkira:         req.Tazkira,
		PasswordHash:    string(hash),
		OpeningBalance:  req.OpeningBalance,
		OpeningCurrency: req.OpeningCurrency,
	})
	metrics.RecordOperation("create_agent", err)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"id":       agent.ID,
		"name":     agent.Name,
		"province": agent.Province,
	})
}

type agentSummary struct {
	ID       uint             `json:"id"`
	Name     string           `json:"name"`
	Province string           `json:"province"`
	Phone    string           `json:"phone"`
	IsActive bool             `json:"is_active"`
	Balances []models.Balance `json:"balances"`
}

func (h *Handler) ListAgentsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	agents, err := h.Engine.ListAgents(actor)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	summaries := make([]agentSummary, 0, len(agents))
	for _, a := range agents {
		balances, err := h.Engine.ListBalances(actor, a.ID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		summaries = append(summaries, agentSummary{
			ID: a.ID, Name: a.Name, Province: a.Province,
			Phone: a.Phone, IsActive: a.IsActive, Balances: balances,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, summaries)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *Handler) SetAgentActiveHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid agent id")
		return
	}
	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Engine.SetAgentActive(actor, uint(id), req.Active); err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "active": req.Active})
}

type adminTransferRequest struct {
	FromAgentID uint            `json:"from_agent_id"`
	ToAgentID   uint            `json:"to_agent_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
}

func (h *Handler) AdminTransferHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req adminTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.Engine.AdminTransferFunds(actor, req.FromAgentID, req.ToAgentID, req.Amount, req.Currency)
	metrics.RecordOperation("admin_transfer", err)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.Notifier.Notify(req.ToAgentID, "funds_received", "")
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

func (h *Handler) ListTopUpsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	requests, err := h.Engine.ListTopUpRequests(actor, r.URL.Query().Get("status"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, requests)
}

type resolveTopUpRequest struct {
	Decision string `json:"decision"`
}

func (h *Handler) ResolveTopUpHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request id")
		return
	}
	var req resolveTopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resolveErr := h.Engine.ResolveTopUpRequest(actor, uint(id), ledger.Decision(req.Decision))
	metrics.RecordOperation("resolve_topup", resolveErr)
	if resolveErr != nil {
		writeEngineError(w, resolveErr)
		return
	}

	if ledger.Decision(req.Decision) == ledger.DecisionApprove {
		var topup models.TopUpRequest
		if err := h.DB.First(&topup, uint(id)).Error; err == nil {
			h.Notifier.Notify(topup.AgentID, "topup_approved", "")
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"request_id": id, "decision": req.Decision})
}
