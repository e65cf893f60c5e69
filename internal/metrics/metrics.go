package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CommandsHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total chat commands handled, by command",
		},
		[]string{"command"},
	)
	CallbacksHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_callbacks_total",
			Help: "Total inline callback actions handled, by action",
		},
		[]string{"action"},
	)
	StoreErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_store_errors_total",
			Help: "Total unexpected task store failures",
		},
	)
	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_rate_limited_total",
			Help: "Total commands rejected by the rate limiter",
		},
	)
)

func init() {
	prometheus.MustRegister(CommandsHandled, CallbacksHandled, StoreErrors, RateLimited)
}
