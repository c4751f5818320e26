package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for invite flows: dispatch volume, rejected
// entries by reason, submissions, and directory cache effectiveness.
type Metrics struct {
	FlowsOpened       prometheus.Counter
	ActiveFlows       prometheus.Gauge
	ActionsDispatched *prometheus.CounterVec
	EmailsRejected    *prometheus.CounterVec
	Submissions       *prometheus.CounterVec
	EmailsInvited     prometheus.Counter
	DirectoryLookups  *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

// New registers the invite metrics with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the invite metrics with reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		FlowsOpened: f.NewCounter(prometheus.CounterOpts{
			Name: "roster_invite_flows_opened_total",
			Help: "Total number of invite flows opened",
		}),
		ActiveFlows: f.NewGauge(prometheus.GaugeOpts{
			Name: "roster_invite_flows_active",
			Help: "Invite flows opened and not yet submitted or closed",
		}),
		ActionsDispatched: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_invite_actions_dispatched_total",
			Help: "Reducer actions dispatched, by kind and input modality",
		}, []string{"kind", "action_type"}),
		EmailsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_invite_emails_rejected_total",
			Help: "Emails classified as not invitable after an add, by reason",
		}, []string{"reason"}),
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_invite_submissions_total",
			Help: "Submit attempts, by outcome",
		}, []string{"outcome"}),
		EmailsInvited: f.NewCounter(prometheus.CounterOpts{
			Name: "roster_invite_emails_invited_total",
			Help: "Emails handed to the inviter",
		}),
		DirectoryLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_invite_directory_lookups_total",
			Help: "Directory cache lookups, by lookup and result",
		}, []string{"lookup", "result"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roster_invite_operation_duration_seconds",
			Help:    "Duration of invite service operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementFlowsOpened() {
	m.FlowsOpened.Inc()
	m.ActiveFlows.Inc()
}

// FlowEnded is called once per flow when it is submitted or closed.
func (m *Metrics) FlowEnded() {
	m.ActiveFlows.Dec()
}

func (m *Metrics) IncrementDispatched(kind, actionType string) {
	m.ActionsDispatched.WithLabelValues(kind, actionType).Inc()
}

// ObserveRejected records the size of each rejection bucket after an add.
func (m *Metrics) ObserveRejected(invalid, duplicate, notInOrg int) {
	if invalid > 0 {
		m.EmailsRejected.WithLabelValues("invalid").Add(float64(invalid))
	}
	if duplicate > 0 {
		m.EmailsRejected.WithLabelValues("duplicate").Add(float64(duplicate))
	}
	if notInOrg > 0 {
		m.EmailsRejected.WithLabelValues("not_in_org").Add(float64(notInOrg))
	}
}

func (m *Metrics) IncrementSubmission(outcome string, invited int) {
	m.Submissions.WithLabelValues(outcome).Inc()
	if invited > 0 {
		m.EmailsInvited.Add(float64(invited))
	}
}

func (m *Metrics) RecordDirectoryLookup(lookup string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.DirectoryLookups.WithLabelValues(lookup, result).Inc()
}

// ObserveOperation records the duration of a service operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
