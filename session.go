// Package engage is the session facade of the conversation core. The
// host application constructs one Session, binds its action and
// delegate sinks, and drives engagements through it. There is no global
// shared instance; at-most-one-active-engagement is enforced by the
// session's coordinator, not by singleton nil-checks.
package engage

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/engage/alert"
	"github.com/MikeSquared-Agency/engage/chat"
	"github.com/MikeSquared-Agency/engage/coordinator"
	"github.com/MikeSquared-Agency/engage/coresdk"
	"github.com/MikeSquared-Agency/engage/interactor"
	"github.com/MikeSquared-Agency/engage/metrics"
	"github.com/MikeSquared-Agency/engage/scheduler"
)

// Session owns one configured SDK instance: the dispatch loop every
// asynchronous completion hops through, the interactor, the alert gate,
// and the single root coordinator.
type Session struct {
	cfg    Config
	api    coresdk.API
	itr    *interactor.Interactor
	alerts *alert.Manager
	coord  *coordinator.Coordinator
	met    *metrics.Metrics
	clock  scheduler.Clock

	queue chan func()
	quit  chan struct{}

	// Everything below is mutated only on the dispatch goroutine.
	authenticated  bool
	unreadCount    int
	unreadPending  bool
	unreadWatchers []func(int)
	callVisualizer bool
}

// New validates the configuration and builds a session. The dispatch
// loop starts immediately; Close stops it.
func New(cfg Config) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:   cfg,
		queue: make(chan func(), 256),
		quit:  make(chan struct{}),
	}
	s.clock = dispatchClock{inner: scheduler.System(), post: s.post}

	api := cfg.API
	if api == nil {
		rest := coresdk.NewRESTClient(cfg.BaseURL, cfg.SiteID, cfg.APIToken, s.post)
		if cfg.SocketURL != "" {
			rest.AttachSocket(coresdk.NewSocketObserver(cfg.SocketURL, cfg.APIToken, s.socketHandler(), s.post))
		}
		api = rest
	}

	if cfg.MetricsRegisterer != nil {
		s.met = metrics.New(cfg.MetricsRegisterer)
		api = &instrumentedAPI{API: api, met: s.met}
	}
	s.api = api

	s.itr = interactor.New(s.api, cfg.QueueIDs)

	alertStrings := alert.DefaultStrings()
	if cfg.AlertStrings != nil {
		alertStrings = *cfg.AlertStrings
	}
	presenter := cfg.AlertPresenter
	if presenter == nil {
		presenter = nopPresenter{}
	}
	s.alerts = alert.NewManager(alert.NewComposer(alertStrings), presenter)
	if s.met != nil {
		s.alerts.SetDecisionHook(func(d alert.Decision) {
			s.met.AlertDecisions.WithLabelValues(string(d)).Inc()
		})
	}

	s.coord = coordinator.New(coordinator.Config{
		API:        s.api,
		Interactor: s.itr,
		Alerts:     s.alerts,
		Clock:      s.clock,
		Core: chat.CoreConfig{
			CharacterLimit:            cfg.CharacterLimit,
			UploadLimit:               cfg.UploadLimit,
			DeliveredStatusText:       cfg.DeliveredStatusText,
			FailedToDeliverStatusText: cfg.FailedToDeliverStatusText,
		},
		MarkReadDelay:                cfg.MarkReadDelay,
		HistoryTimeout:               cfg.HistoryTimeout,
		RestartWait:                  cfg.RestartWait,
		IsAuthenticated:              func() bool { return s.authenticated },
		HasPendingSecureConversation: func() bool { return s.unreadCount > 0 },
	})

	go s.run()
	slog.Info("engage: session created", "site_id", cfg.SiteID, "queues", len(cfg.QueueIDs))
	return s, nil
}

// Close stops the dispatch loop. Pending completions become no-ops.
func (s *Session) Close() {
	s.postSync(func() {
		if s.coord.IsEngagementOngoing() {
			_ = s.coord.End()
		}
		s.api.StopSocketObservation()
	})
	close(s.quit)
}

// run is the serial dispatch loop: the one logical thread all model
// state is mutated on.
func (s *Session) run() {
	for {
		select {
		case fn := <-s.queue:
			fn()
		case <-s.quit:
			return
		}
	}
}

// post schedules fn onto the dispatch goroutine.
func (s *Session) post(fn func()) {
	select {
	case s.queue <- fn:
	case <-s.quit:
	}
}

// postSync runs fn on the dispatch goroutine and waits for it. Session
// entry points use it so callers get synchronous errors while all state
// stays single-threaded. Never call from the dispatch goroutine itself.
func (s *Session) postSync(fn func()) {
	done := make(chan struct{})
	s.post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
	case <-s.quit:
	}
}

// OnAction binds the UI directive stream for the active conversation
// surface. Bind before starting an engagement.
func (s *Session) OnAction(sink chat.ActionSink) {
	s.postSync(func() { s.coord.SetActionSink(sink) })
}

// OnHostEvent binds the host delegate stream (minimize, finished, file
// previews, media pickers).
func (s *Session) OnHostEvent(sink chat.DelegateSink) {
	s.postSync(func() { s.coord.SetHostSink(sink) })
}

// StartEngagement begins an engagement of the given kind. Concurrency
// and configuration violations are returned synchronously before any
// state changes.
func (s *Session) StartEngagement(kind interactor.EngagementKind) error {
	var err error
	s.postSync(func() {
		if s.callVisualizer {
			err = ErrCallVisualizerEngagementExists
			return
		}
		_, err = s.coord.Start(kind)
		if err == nil && s.met != nil {
			s.met.EngagementsStarted.WithLabelValues(string(kind)).Inc()
		}
	})
	return err
}

// EndEngagement tears the ongoing engagement down.
func (s *Session) EndEngagement() error {
	var err error
	s.postSync(func() { err = s.coord.End() })
	return err
}

// Dispatch forwards one presentation-layer event to the active
// conversation model.
func (s *Session) Dispatch(e chat.Event) {
	s.post(func() {
		if m := s.coord.Model(); m != nil {
			m.Dispatch(e)
		}
	})
}

// Authenticate marks the visitor authenticated. Secure conversations
// require this.
func (s *Session) Authenticate() {
	s.postSync(func() {
		s.authenticated = true
		s.refreshUnreadCount()
	})
}

// Deauthenticate clears visitor authentication.
func (s *Session) Deauthenticate() {
	s.postSync(func() { s.authenticated = false })
}

// HandleAuthenticationExpired surfaces auth expiry through the alert
// gate at the highest priority; routine alerts cannot displace it.
func (s *Session) HandleAuthenticationExpired() {
	s.postSync(func() {
		s.authenticated = false
		s.alerts.Present(
			alert.Input{Kind: alert.KindAuthenticationExpired},
			alert.Placement{Kind: alert.PlacementGlobal},
		)
	})
}

// SetCallVisualizerActive flags an ongoing call-visualizer engagement,
// which blocks regular engagement starts until cleared.
func (s *Session) SetCallVisualizerActive(active bool) {
	s.postSync(func() { s.callVisualizer = active })
}

// ObserveUnreadCount registers a host callback for secure unread badge
// counts. Fired on the dispatch goroutine after every refresh.
func (s *Session) ObserveUnreadCount(fn func(int)) {
	s.postSync(func() {
		s.unreadWatchers = append(s.unreadWatchers, fn)
		s.refreshUnreadCount()
	})
}

// refreshUnreadCount re-fetches the unread counter and notifies
// watchers. Coalesces overlapping refreshes.
func (s *Session) refreshUnreadCount() {
	if s.unreadPending {
		return
	}
	s.unreadPending = true
	s.api.GetSecureUnreadMessageCount(func(count int, err error) {
		s.unreadPending = false
		if err != nil {
			slog.Warn("engage: unread count refresh failed", "error", err)
			return
		}
		s.unreadCount = count
		for _, fn := range s.unreadWatchers {
			fn(count)
		}
	})
}

// socketHandler translates socket events into interactor fan-out.
func (s *Session) socketHandler() coresdk.SocketHandler {
	count := func() {
		if s.met != nil {
			s.met.SocketEvents.Inc()
		}
	}
	return coresdk.SocketHandler{
		OnMessage: func(msg coresdk.ChatMessage) {
			count()
			s.itr.ReceiveMessage(msg)
			s.refreshUnreadCount()
		},
		OnEngagementState: func(ev coresdk.EngagementStateEvent) {
			count()
			s.itr.SetState(interactorState(ev, s.itr.State()))
		},
		OnMediaUpgrade: func(offer coresdk.MediaOffer) {
			count()
			s.itr.OfferUpgrade(offer)
		},
		OnScreenShare: func() {
			count()
			s.itr.OfferScreenShare()
		},
	}
}

// interactorState maps a wire lifecycle event onto the typed state,
// keeping the engagement kind from the current state.
func interactorState(ev coresdk.EngagementStateEvent, current interactor.State) interactor.State {
	st := interactor.State{EngagementKind: current.EngagementKind}
	switch ev.State {
	case "enqueueing":
		st.Kind = interactor.StateEnqueueing
	case "enqueued":
		st.Kind = interactor.StateEnqueued
		st.Ticket = ev.Ticket
	case "engaged":
		st.Kind = interactor.StateEngaged
		st.Operator = ev.Operator
	case "ended":
		st.Kind = interactor.StateEnded
	default:
		st.Kind = interactor.StateNone
	}
	return st
}

// dispatchClock hops scheduled callbacks onto the dispatch goroutine so
// timer firings obey the single-logical-thread model.
type dispatchClock struct {
	inner scheduler.Clock
	post  func(func())
}

func (c dispatchClock) Now() time.Time {
	return c.inner.Now()
}

func (c dispatchClock) AfterFunc(d time.Duration, fn func()) scheduler.Task {
	return c.inner.AfterFunc(d, func() { c.post(fn) })
}

// instrumentedAPI counts send outcomes on the way through.
type instrumentedAPI struct {
	coresdk.API
	met *metrics.Metrics
}

func (a *instrumentedAPI) SendSecureMessagePayload(payload coresdk.OutgoingPayload, queueIDs []string, complete func(coresdk.ChatMessage, error)) {
	a.API.SendSecureMessagePayload(payload, queueIDs, func(msg coresdk.ChatMessage, err error) {
		if err != nil {
			a.met.MessagesFailed.Inc()
		} else {
			a.met.MessagesSent.Inc()
		}
		complete(msg, err)
	})
}

// nopPresenter drops alerts when the host provides no presenter.
type nopPresenter struct{}

func (nopPresenter) Present(alert.Alert) {}
func (nopPresenter) Dismiss(alert.Alert) {}

// SetupLogging installs a text slog handler at the given level on the
// process default logger. Optional; hosts with their own slog setup
// skip it.
func SetupLogging(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
