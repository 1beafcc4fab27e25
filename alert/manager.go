package alert

import "log/slog"

// Presenter is the host-side rendering surface. The manager decides what
// may be shown; the presenter only draws and tears down.
type Presenter interface {
	Present(Alert)
	Dismiss(Alert)
}

// Decision reports what the manager did with a Present request.
type Decision string

const (
	DecisionPresented  Decision = "presented"
	DecisionReplaced   Decision = "replaced"
	DecisionDuplicate  Decision = "duplicate"
	DecisionSuppressed Decision = "suppressed"
	DecisionFailed     Decision = "failed"
)

// Manager owns the single live alert slot. At most one alert (plus its
// owning placement) is live at a time; a new alert replaces the current
// one only if its priority is at least as high.
//
// Not safe for concurrent use; drive it from the session dispatch
// goroutine.
type Manager struct {
	composer   *Composer
	presenter  Presenter
	current    *Alert
	onDecision func(Decision)
}

// NewManager creates a manager over the given composer and presenter.
func NewManager(composer *Composer, presenter Presenter) *Manager {
	return &Manager{composer: composer, presenter: presenter}
}

// SetDecisionHook observes every Present outcome (instrumentation).
func (m *Manager) SetDecisionHook(fn func(Decision)) {
	m.onDecision = fn
}

func (m *Manager) decide(d Decision) Decision {
	if m.onDecision != nil {
		m.onDecision(d)
	}
	return d
}

// Current returns the live alert, or nil when the slot is idle.
func (m *Manager) Current() *Alert {
	return m.current
}

// IsReplaceable reports whether an alert of the given priority may take
// the slot right now.
func (m *Manager) IsReplaceable(p Priority) bool {
	return m.current == nil || p >= m.current.Input.Priority()
}

// Present requests presentation of the given input at the given
// placement and reports what happened. Requests structurally equal to
// the current alert are no-ops; lower-priority requests are suppressed;
// composition failures drop the alert without a fallback.
func (m *Manager) Present(in Input, placement Placement) Decision {
	if m.current != nil && m.current.Input.equal(in) {
		return m.decide(DecisionDuplicate)
	}
	if !m.IsReplaceable(in.Priority()) {
		slog.Info("alert: suppressed by higher-priority alert",
			"requested", in.Kind,
			"requested_priority", in.Priority().String(),
			"current", m.current.Input.Kind,
		)
		return m.decide(DecisionSuppressed)
	}

	content, err := m.composer.Compose(in)
	if err != nil {
		slog.Warn("alert: compose failed, not presenting", "kind", in.Kind, "error", err)
		return m.decide(DecisionFailed)
	}

	replaced := m.current != nil
	if replaced {
		m.presenter.Dismiss(*m.current)
	}

	a := Alert{Input: in, Content: content, Placement: placement}
	m.current = &a
	m.presenter.Present(a)

	slog.Info("alert: presented",
		"kind", in.Kind,
		"priority", in.Priority().String(),
		"placement", placement.Kind,
	)
	if replaced {
		return m.decide(DecisionReplaced)
	}
	return m.decide(DecisionPresented)
}

// Dismiss tears the live alert down. Window, placement, and slot are
// cleared together; partial cleanup is not a valid state.
func (m *Manager) Dismiss() {
	if m.current == nil {
		return
	}
	a := *m.current
	m.current = nil
	m.presenter.Dismiss(a)
	slog.Info("alert: dismissed", "kind", a.Input.Kind)
}
