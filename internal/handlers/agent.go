package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omidrahimi/hawala_system/internal/httputil"
	"github.com/omidrahimi/hawala_system/internal/ledger"
	"github.com/omidrahimi/hawala_system/internal/metrics"
)

type createTransactionRequest struct {
	DestinationAgentID uint            `json:"destination_agent_id"`
	SenderName         string          `json:"sender_name"`
	ReceiverName       string          `json:"receiver_name"`
	ReceiverTazkira    string          `json:"receiver_tazkira"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
}

func (h *Handler) CreateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	code, err := h.Engine.CreateTransaction(actor, req.DestinationAgentID,
		req.SenderName, req.ReceiverName, req.ReceiverTazkira, req.Amount, req.Currency)
	metrics.RecordOperation("create_transaction", err)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.Notifier.Notify(req.DestinationAgentID, "transaction_created", code)
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"code": code})
}

// subjectAgentID resolves which agent's rows the request is about. Agents
// always read their own; admins must name the agent explicitly, their own id
// is an admin id and never an agent id.
func subjectAgentID(w http.ResponseWriter, r *http.Request, actor ledger.Actor) (uint, bool) {
	if !actor.IsAdmin() {
		return actor.ID, true
	}
	id, err := strconv.ParseUint(r.URL.Query().Get("agent_id"), 10, 32)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "agent_id is required")
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	agentID, ok := subjectAgentID(w, r, actor)
	if !ok {
		return
	}
	currency := r.URL.Query().Get("currency")
	if currency == "" {
		currency = "AFN"
	}

	amount, err := h.Engine.GetBalance(actor, agentID, currency)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"agent_id": agentID,
		"currency": currency,
		"amount":   amount,
	})
}

func (h *Handler) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	agentID, ok := subjectAgentID(w, r, actor)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	txns, err := h.Engine.ListAgentTransactions(actor, agentID, limit)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, txns)
}

func (h *Handler) GetTransactionHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := actorFrom(w, r); !ok {
		return
	}
	code := chi.URLParam(r, "code")

	t, err := h.Engine.GetTransaction(code)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

type editTransactionRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) EditTransactionHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req editTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	code := chi.URLParam(r, "code")

	err := h.Engine.EditPendingAmount(actor, code, req.Amount)
	metrics.RecordOperation("edit_transaction", err)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"code": code, "status": "updated"})
}

func (h *Handler) CancelTransactionHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	code := chi.URLParam(r, "code")

	refunded, err := h.Engine.CancelPending(actor, code)
	metrics.RecordOperation("cancel_transaction", err)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"code": code, "refunded": refunded})
}

func (h *Handler) PayTransactionHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	code := chi.URLParam(r, "code")

	err := h.Engine.PayTransaction(actor, code)
	metrics.RecordOperation("pay_transaction", err)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	// Tell the origin agent the payout happened.
	if t, lookupErr := h.Engine.GetTransaction(code); lookupErr == nil {
		h.Notifier.Notify(t.OriginAgentID, "transaction_completed", code)
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"code": code, "status": "completed"})
}

type submitTopUpRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Evidence string          `json:"evidence,omitempty"`
}

func (h *Handler) SubmitTopUpHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req submitTopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Mint an artifact handle when the agent did not reference an upload.
	if req.Evidence == "" {
		req.Evidence = uuid.NewString()
	}

	id, err := h.Engine.SubmitTopUpRequest(actor, req.Amount, req.Currency, req.Evidence)
	metrics.RecordOperation("submit_topup", err)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"request_id": id, "evidence": req.Evidence})
}
