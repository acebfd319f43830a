package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/omidrahimi/hawala_system/configs"
	"github.com/omidrahimi/hawala_system/internal/httputil"
	"github.com/omidrahimi/hawala_system/internal/ledger"
	"github.com/omidrahimi/hawala_system/internal/logger"
	appmw "github.com/omidrahimi/hawala_system/internal/middleware"
	"github.com/omidrahimi/hawala_system/internal/models"
	"github.com/omidrahimi/hawala_system/internal/notify"
)

// maxFailedLogins locks an agent account until an admin reactivates it.
const maxFailedLogins = 5

type Handler struct {
	DB       *gorm.DB
	Engine   *ledger.Engine
	Notifier *notify.Notifier
}

func New(db *gorm.DB, engine *ledger.Engine, notifier *notify.Notifier) *Handler {
	return &Handler{DB: db, Engine: engine, Notifier: notifier}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrStateConflict):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeEngineError(w http.ResponseWriter, err error) {
	code := statusForError(err)
	if code == http.StatusInternalServerError {
		logger.Log.Error("ledger operation failed", zap.Error(err))
		httputil.WriteError(w, code, "internal error")
		return
	}
	httputil.WriteError(w, code, err.Error())
}

func actorFrom(w http.ResponseWriter, r *http.Request) (ledger.Actor, bool) {
	actor, ok := appmw.ActorFrom(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
	}
	return actor, ok
}

func (h *Handler) signToken(role ledger.Role, subject uint) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": string(role),
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(configs.AppConfig.JWT.SECRET))
}

func (h *Handler) recordFailedLogin(agent *models.Agent) {
	// The increment runs in the database so concurrent failures each count
	// toward the threshold.
	if err := h.DB.Model(&models.Agent{}).Where("id = ?", agent.ID).
		UpdateColumn("failed_attempts", gorm.Expr("failed_attempts + 1")).Error; err != nil {
		logger.Log.Error("failed to record login attempt", zap.Error(err))
		return
	}

	var attempts int
	if err := h.DB.Model(&models.Agent{}).Where("id = ?", agent.ID).
		Select("failed_attempts").Scan(&attempts).Error; err != nil {
		logger.Log.Error("failed to read login attempts", zap.Error(err))
		return
	}
	if attempts < maxFailedLogins {
		return
	}

	now := time.Now()
	if err := h.DB.Model(&models.Agent{}).Where("id = ?", agent.ID).
		Updates(map[string]interface{}{"is_active": false, "locked_at": now}).Error; err != nil {
		logger.Log.Error("failed to lock agent account", zap.Error(err))
		return
	}
	logger.Log.Warn("agent account locked after repeated failed logins",
		zap.Uint("agent_id", agent.ID))
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
