package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/omidrahimi/hawala_system/internal/httputil"
	"github.com/omidrahimi/hawala_system/internal/ledger"
	"github.com/omidrahimi/hawala_system/internal/logger"
	"github.com/omidrahimi/hawala_system/internal/models"
)

// LoginRequest carries either an admin username or an agent phone number.
type LoginRequest struct {
	Username string `json:"username,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" || (req.Username == "" && req.Phone == "") {
		httputil.WriteError(w, http.StatusBadRequest, "username or phone, and password are required")
		return
	}

	if req.Username != "" {
		h.adminLogin(w, req)
		return
	}
	h.agentLogin(w, req)
}

func (h *Handler) adminLogin(w http.ResponseWriter, req LoginRequest) {
	var admin models.Admin
	if err := h.DB.Where("username = ?", req.Username).First(&admin).Error; err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !admin.IsActive || !checkPassword(admin.Password, req.Password) {
		httputil.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	signed, err := h.signToken(ledger.RoleAdmin, admin.ID)
	if err != nil {
		logger.Log.Error("failed to sign jwt", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create token")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LoginResponse{Token: signed, Role: string(ledger.RoleAdmin)})
}

func (h *Handler) agentLogin(w http.ResponseWriter, req LoginRequest) {
	var agent models.Agent
	if err := h.DB.Where("phone = ?", req.Phone).First(&agent).Error; err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !agent.IsActive {
		httputil.WriteError(w, http.StatusForbidden, "account is disabled")
		return
	}
	if !checkPassword(agent.Password, req.Password) {
		h.recordFailedLogin(&agent)
		httputil.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if agent.FailedAttempts > 0 {
		if err := h.DB.Model(&agent).
			Updates(map[string]interface{}{"failed_attempts": 0, "locked_at": nil}).Error; err != nil {
			logger.Log.Error("failed to reset login attempts", zap.Error(err))
		}
	}

	signed, err := h.signToken(ledger.RoleAgent, agent.ID)
	if err != nil {
		logger.Log.Error("failed to sign jwt", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create token")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LoginResponse{Token: signed, Role: string(ledger.RoleAgent)})
}

type meResponse struct {
	Role     string `json:"role"`
	ID       uint   `json:"id"`
	Name     string `json:"name,omitempty"`
	Province string `json:"province,omitempty"`
}

func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	resp := meResponse{Role: string(actor.Role), ID: actor.ID}
	if actor.Role == ledger.RoleAgent {
		var agent models.Agent
		if err := h.DB.First(&agent, actor.ID).Error; err == nil {
			resp.Name = agent.Name
			resp.Province = agent.Province
		}
	} else {
		var admin models.Admin
		if err := h.DB.First(&admin, actor.ID).Error; err == nil {
			resp.Name = admin.Username
		}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
