// Package coordinator owns one engagement attempt end to end: deciding
// whether to start a new engagement, resume an ongoing one, or redirect
// to the transcript surface when a secure conversation is pending, and
// routing model delegate events into the alert gate and the host.
package coordinator

import (
	"errors"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/engage/alert"
	"github.com/MikeSquared-Agency/engage/chat"
	"github.com/MikeSquared-Agency/engage/coresdk"
	"github.com/MikeSquared-Agency/engage/interactor"
	"github.com/MikeSquared-Agency/engage/scheduler"
)

// Engagement lifecycle errors, thrown synchronously before any state
// mutation so callers can redirect (resume, end-first) instead.
var (
	ErrEngagementExists   = errors.New("engagement already exists")
	ErrEngagementNotExist = errors.New("no ongoing engagement")
	ErrRestartPending     = errors.New("engagement restart wait in progress")
)

// HostEvent is a delegate event surfaced to the host application.
type HostEvent = chat.DelegateEvent

// Config wires a Coordinator.
type Config struct {
	API        coresdk.API
	Interactor *interactor.Interactor
	Alerts     *alert.Manager
	Clock      scheduler.Clock

	Core           chat.CoreConfig
	MarkReadDelay  time.Duration
	HistoryTimeout time.Duration

	// IsAuthenticated gates secure conversations.
	IsAuthenticated func() bool
	// HasPendingSecureConversation redirects a chat start to the
	// transcript surface when unread secure messages are waiting.
	HasPendingSecureConversation func() bool
	// RestartWait is how long after an engagement ends before a new one
	// may start. Zero disables the wait.
	RestartWait time.Duration
}

// Coordinator is the single root flow orchestrator. At most one
// engagement flow is live per coordinator; a second Start while one is
// ongoing either resumes it or fails with ErrEngagementExists.
//
// Not safe for concurrent use; drive it from the session dispatch
// goroutine.
type Coordinator struct {
	cfg Config

	model          *chat.CompositeModel
	engagementKind interactor.EngagementKind
	active         bool
	endRequested   bool
	restartTask    scheduler.Task
	restartWaiting bool

	action ActionSink
	host   DelegateSink
}

// ActionSink receives the active model's UI directives.
type ActionSink = chat.ActionSink

// DelegateSink receives host-facing delegate events.
type DelegateSink = chat.DelegateSink

// New creates an idle coordinator.
func New(cfg Config) *Coordinator {
	if cfg.IsAuthenticated == nil {
		cfg.IsAuthenticated = func() bool { return false }
	}
	if cfg.HasPendingSecureConversation == nil {
		cfg.HasPendingSecureConversation = func() bool { return false }
	}
	c := &Coordinator{cfg: cfg}
	cfg.Interactor.AddObserver(c, c.handleInteractorEvent)
	return c
}

// SetActionSink binds the UI directive stream reaching the host.
func (c *Coordinator) SetActionSink(sink ActionSink) {
	c.action = sink
	if c.model != nil {
		c.model.SetActionSink(sink)
	}
}

// SetHostSink binds the host delegate stream.
func (c *Coordinator) SetHostSink(sink DelegateSink) {
	c.host = sink
}

// Model returns the active composite model, or nil when idle.
func (c *Coordinator) Model() *chat.CompositeModel {
	return c.model
}

// IsEngagementOngoing reports whether a flow is live.
func (c *Coordinator) IsEngagementOngoing() bool {
	return c.active
}

// Start begins an engagement flow of the given kind. An ongoing flow of
// the same kind is resumed; a different kind fails with
// ErrEngagementExists. A chat start with a pending secure conversation
// is redirected to the transcript surface.
func (c *Coordinator) Start(kind interactor.EngagementKind) (*chat.CompositeModel, error) {
	if c.restartWaiting {
		return nil, ErrRestartPending
	}
	if c.active {
		if kind == c.engagementKind {
			slog.Info("coordinator: resuming ongoing engagement", "kind", kind)
			return c.model, nil
		}
		return nil, ErrEngagementExists
	}

	transcriptFirst := kind == interactor.KindMessaging ||
		(kind == interactor.KindChat && c.cfg.HasPendingSecureConversation())

	if transcriptFirst {
		c.model = chat.NewCompositeTranscript(c.newTranscriptModel())
	} else {
		c.model = chat.NewCompositeChat(c.newChatModel())
		c.cfg.Interactor.SetState(interactor.State{
			Kind:           interactor.StateEnqueueing,
			EngagementKind: kind,
		})
	}

	c.engagementKind = kind
	c.active = true
	c.endRequested = false
	c.model.SetActionSink(c.action)
	c.model.SetDelegate(c.handleModelDelegate)
	c.model.Start()

	slog.Info("coordinator: engagement flow started",
		"kind", kind,
		"transcript_first", transcriptFirst,
	)
	return c.model, nil
}

// End tears the ongoing flow down at the visitor's request.
func (c *Coordinator) End() error {
	if !c.active {
		return ErrEngagementNotExist
	}
	c.endRequested = true
	c.model.Stop()
	c.cfg.Interactor.EndSession()
	c.cfg.Alerts.Dismiss()
	c.cleanup()
	return nil
}

func (c *Coordinator) cleanup() {
	c.model = nil
	c.active = false
	if c.cfg.RestartWait > 0 {
		c.restartWaiting = true
		c.restartTask = c.cfg.Clock.AfterFunc(c.cfg.RestartWait, func() {
			// Conditions are re-checked at fire time.
			c.restartWaiting = false
			c.restartTask = nil
		})
	}
}

func (c *Coordinator) newTranscriptModel() *chat.TranscriptModel {
	return chat.NewTranscriptModel(chat.TranscriptModelConfig{
		Core:            c.cfg.Core,
		API:             c.cfg.API,
		Interactor:      c.cfg.Interactor,
		Clock:           c.cfg.Clock,
		MarkReadDelay:   c.cfg.MarkReadDelay,
		HistoryTimeout:  c.cfg.HistoryTimeout,
		IsAuthenticated: c.cfg.IsAuthenticated,
	})
}

func (c *Coordinator) newChatModel() *chat.ChatModel {
	return chat.NewChatModel(chat.ChatModelConfig{
		Core:       c.cfg.Core,
		API:        c.cfg.API,
		Interactor: c.cfg.Interactor,
	})
}

// handleModelDelegate routes model delegate events: alerts go through
// the priority gate, the upgrade signal swaps transcript for live chat,
// everything else reaches the host.
func (c *Coordinator) handleModelDelegate(e chat.DelegateEvent) {
	switch ev := e.(type) {
	case chat.ShowAlert:
		placement := alert.Placement{Kind: alert.PlacementGlobal}
		if ev.AsView {
			placement = alert.Placement{Kind: alert.PlacementRoot, Host: "conversation"}
		}
		c.cfg.Alerts.Present(ev.Input, placement)
	case chat.UpgradeToChatEngagement:
		c.upgradeToLiveChat()
	case chat.Finished:
		c.notifyHost(e)
		if c.active && !c.endRequested {
			// The model finished on its own. Stop it before the terminal
			// broadcast so it cannot observe its own teardown or keep
			// rendering for a dead engagement, and mark the end requested
			// so the teardown does not re-present the operator-ended
			// alert.
			c.endRequested = true
			c.model.Stop()
			c.cfg.Interactor.EndSession()
			c.cleanup()
		}
	default:
		c.notifyHost(e)
	}
}

// upgradeToLiveChat swaps the transcript case for a live chat model in
// place, preserving the hosting view.
func (c *Coordinator) upgradeToLiveChat() {
	if c.model == nil {
		return
	}
	c.engagementKind = interactor.KindChat
	c.model.SwapAndBindChat(c.newChatModel())
	c.notifyHost(chat.UpgradeToChatEngagement{})
}

func (c *Coordinator) handleInteractorEvent(e interactor.Event) {
	st, ok := e.(interactor.StateChanged)
	if !ok {
		return
	}
	if st.State.Kind == interactor.StateEnded && c.active && !c.endRequested {
		// The far side ended the engagement; this is always re-presented.
		c.cfg.Alerts.Present(
			alert.Input{Kind: alert.KindOperatorEndedEngagement},
			alert.Placement{Kind: alert.PlacementGlobal},
		)
	}
}

func (c *Coordinator) notifyHost(e HostEvent) {
	if c.host != nil {
		c.host(e)
	}
}
