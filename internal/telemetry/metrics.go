package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine counters, exposed on /metrics next to the default collectors.
var (
	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fight_sessions_created_total",
		Help: "Boss fight sessions created.",
	})

	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fight_sessions_started_total",
		Help: "Boss fight sessions that reached the active state.",
	})

	AnswersSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fight_answers_total",
		Help: "Processed answer outcomes.",
	}, []string{"result"}) // correct | incorrect | timeout

	Knockouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fight_knockouts_total",
		Help: "Players knocked out.",
	})

	Revivals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fight_revivals_total",
		Help: "Players revived by teammates.",
	})

	BossesDefeated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fight_bosses_defeated_total",
		Help: "Boss fights won by depleting the HP pool.",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fight_active_sessions",
		Help: "Sessions currently registered, any status.",
	})
)
