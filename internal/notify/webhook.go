package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/omidrahimi/hawala_system/internal/logger"
)

// Notifier delivers fire-and-forget agent events to a webhook endpoint.
// Handlers call it only after the ledger mutation has committed; a lost
// notification never implies a lost ledger write.
type Notifier struct {
	url    string
	client *http.Client
}

func New(url string) *Notifier {
	return &Notifier{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type Event struct {
	AgentID uint   `json:"agent_id"`
	Kind    string `json:"kind"`
	Code    string `json:"code,omitempty"`
}

// Notify posts the event asynchronously. Delivery failures are logged and
// never surfaced to the caller.
func (n *Notifier) Notify(agentID uint, kind, code string) {
	if n == nil || n.url == "" {
		return
	}
	body, err := json.Marshal(Event{AgentID: agentID, Kind: kind, Code: code})
	if err != nil {
		return
	}
	go func() {
		resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(body))
		if err != nil {
			logger.Log.Warn("notification delivery failed", zap.Error(err))
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			logger.Log.Warn("notification endpoint returned error",
				zap.Int("status", resp.StatusCode), zap.String("kind", kind))
		}
	}()
}
