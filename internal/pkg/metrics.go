package pkg

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	swipes        *prometheus.CounterVec
	matches       prometheus.Counter
	messages      prometheus.Counter
	promotions    prometheus.Counter
	pushQueued    *prometheus.CounterVec
	outboxRelayed *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		swipes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "synergy_swipes_total",
			Help: "Recorded swipes by action.",
		}, []string{"action"}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "synergy_matches_created_total",
			Help: "Matches created.",
		}),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "synergy_chat_messages_total",
			Help: "Chat messages sent.",
		}),
		promotions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "synergy_communities_promoted_total",
			Help: "Communities promoted from proposed to official.",
		}),
		pushQueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "synergy_push_queued_total",
			Help: "Push notifications queued by type.",
		}, []string{"type"}),
		outboxRelayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "synergy_outbox_relayed_total",
			Help: "Outbox rows relayed by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.swipes, m.matches, m.messages, m.promotions, m.pushQueued, m.outboxRelayed)
	return m
}

func (m *Metrics) SwipeRecorded(action string) {
	if m != nil {
		m.swipes.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) MatchCreated() {
	if m != nil {
		m.matches.Inc()
	}
}

func (m *Metrics) MessageSent() {
	if m != nil {
		m.messages.Inc()
	}
}

func (m *Metrics) CommunityPromoted() {
	if m != nil {
		m.promotions.Inc()
	}
}

func (m *Metrics) PushQueued(kind string) {
	if m != nil {
		m.pushQueued.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) OutboxRelayed(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.outboxRelayed.WithLabelValues("sent").Inc()
	} else {
		m.outboxRelayed.WithLabelValues("failed").Inc()
	}
}
