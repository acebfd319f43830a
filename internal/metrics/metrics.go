package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var operations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "hawala",
		Name:      "ledger_operations_total",
		Help:      "Ledger engine operations by operation name and outcome",
	},
	[]string{"op", "result"},
)

// RecordOperation counts one engine call. Errors are not broken out by kind;
// the taxonomy lives in logs and responses, the counter tracks volume.
func RecordOperation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	operations.WithLabelValues(op, result).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
