package chat

import (
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/engage/alert"
	"github.com/MikeSquared-Agency/engage/coresdk"
	"github.com/MikeSquared-Agency/engage/interactor"
	"github.com/MikeSquared-Agency/engage/scheduler"
)

// DefaultMarkReadDelay is how long a loaded transcript stays on screen
// before the unread counter is cleared server-side.
const DefaultMarkReadDelay = 6 * time.Second

// TranscriptModelConfig wires a TranscriptModel.
type TranscriptModelConfig struct {
	Core       CoreConfig
	API        coresdk.API
	Interactor *interactor.Interactor
	Clock      scheduler.Clock

	// MarkReadDelay overrides DefaultMarkReadDelay when positive.
	MarkReadDelay time.Duration
	// HistoryTimeout bounds the combined history load; zero disables it.
	HistoryTimeout time.Duration
	// IsAuthenticated reports whether the visitor is authenticated.
	// Secure conversations require an authenticated visitor.
	IsAuthenticated func() bool
}

// TranscriptModel drives the secure-messaging read/compose surface: it
// loads persisted history with the unread divider, reconciles REST and
// socket sightings of each message, schedules mark-as-read, and hands
// off to a live chat model when the engagement becomes engaged.
type TranscriptModel struct {
	conversationCore

	api           coresdk.API
	itr           *interactor.Interactor
	clock         scheduler.Clock
	loader        *HistoryLoader
	markReadDelay time.Duration
	isAuth        func() bool

	available         bool
	availabilityKnown bool
	unavailableShown  bool
	historyLoaded     bool
	upgradeSignalled  bool
	leavePending      bool
	markReadTask      scheduler.Task
}

// NewTranscriptModel creates a transcript model. Call Start once the
// action and delegate sinks are bound.
func NewTranscriptModel(cfg TranscriptModelConfig) *TranscriptModel {
	delay := cfg.MarkReadDelay
	if delay <= 0 {
		delay = DefaultMarkReadDelay
	}
	isAuth := cfg.IsAuthenticated
	if isAuth == nil {
		isAuth = func() bool { return false }
	}
	return &TranscriptModel{
		conversationCore: newConversationCore(cfg.Core),
		api:              cfg.API,
		itr:              cfg.Interactor,
		clock:            cfg.Clock,
		loader:           NewHistoryLoader(cfg.API, cfg.Clock, cfg.HistoryTimeout),
		markReadDelay:    delay,
		isAuth:           isAuth,
	}
}

// SetActionSink binds the UI directive stream.
func (m *TranscriptModel) SetActionSink(sink ActionSink) {
	m.action = sink
}

// SetDelegate binds the delegate event stream.
func (m *TranscriptModel) SetDelegate(sink DelegateSink) {
	m.delegate = sink
}

// Start opens socket observation, checks secure-conversation
// availability, and loads history.
func (m *TranscriptModel) Start() {
	m.api.StartSocketObservation()
	m.itr.AddObserver(m, m.handleInteractorEvent)

	m.api.FetchSiteConfigurations(func(site coresdk.SiteConfiguration, err error) {
		if m.invalidated {
			return
		}
		if err != nil {
			slog.Warn("transcript: site configuration fetch failed", "error", err)
			m.setUnavailable()
			return
		}
		if !site.SecureConversationsEnabled {
			m.setUnavailable()
			return
		}
		m.checkQueueAvailability()
	})

	m.loadHistory()
}

// Stop detaches the model from the interactor and cancels scheduled work.
func (m *TranscriptModel) Stop() {
	m.itr.RemoveObserver(m)
	if m.markReadTask != nil {
		m.markReadTask.Cancel()
		m.markReadTask = nil
	}
	m.Invalidate()
}

// IsSecureConversationsAvailable reports the last availability check.
func (m *TranscriptModel) IsSecureConversationsAvailable() bool {
	return m.available
}

// Dispatch consumes one presentation-layer event.
func (m *TranscriptModel) Dispatch(e Event) {
	if m.handleCommonEvent(e, m.send) {
		return
	}
	switch ev := e.(type) {
	case LeaveConversationRequested:
		m.leavePending = true
		if m.markReadTask != nil {
			m.markReadTask.Cancel()
			m.markReadTask = nil
		}
		m.notifyDelegate(ShowAlert{Input: alert.Input{Kind: alert.KindLeaveConversation}})
	case LeaveConversationResolved:
		m.leavePending = false
		if ev.Confirmed {
			m.notifyDelegate(Finished{})
			return
		}
		if m.historyLoaded {
			m.scheduleMarkRead()
		}
	}
}

// send routes a secure message to the configured queues, blocking sends
// while the message center is known unavailable.
func (m *TranscriptModel) send(payload coresdk.OutgoingPayload, complete func(coresdk.ChatMessage, error)) {
	if m.availabilityKnown && !m.available {
		m.notifyDelegate(ShowAlert{Input: alert.Input{Kind: alert.KindUnavailableMessageCenter}, AsView: true})
		return
	}
	m.api.SendSecureMessagePayload(payload, m.itr.QueueIDs(), complete)
}

func (m *TranscriptModel) handleInteractorEvent(e interactor.Event) {
	switch ev := e.(type) {
	case interactor.ReceivedMessage:
		m.receiveSocketMessage(ev.Message)
	case interactor.StateChanged:
		if ev.State.Kind == interactor.StateEngaged {
			m.signalUpgrade()
		}
	}
}

// receiveSocketMessage feeds reconciliation and surfaces quick replies
// when the newest message carries them.
func (m *TranscriptModel) receiveSocketMessage(msg coresdk.ChatMessage) {
	m.receiveMessage(socketSource(msg))
	if gva, ok := gvaFromMessage(msg); ok && gva.Kind == GvaQuickReplies {
		m.emit(QuickReplyPropsUpdated{Buttons: gva.Buttons})
	}
}

// loadHistory replaces the history section wholesale with the fetched
// transcript. History failure degrades to an empty list: initial render
// is never blocked on history.
func (m *TranscriptModel) loadHistory() {
	m.loader.Load(func(res HistoryResult, err error) {
		if m.invalidated {
			return
		}
		if err != nil {
			slog.Warn("transcript: history load failed, rendering empty", "error", err)
			res = HistoryResult{}
		}

		items := make([]Item, 0, len(res.Messages)+1)
		for _, msg := range res.Messages {
			if len(m.received.sources(msg.ID)) > 0 {
				// Sighted through the socket while the fetch was in
				// flight; that id already has a rendered row.
				continue
			}
			items = append(items, m.historyItem(msg))
		}
		if res.UnreadCount > 0 && res.UnreadCount <= len(items) {
			at := len(items) - res.UnreadCount
			items = append(items[:at], append([]Item{NewUnreadDivider()}, items[at:]...)...)
		}

		history := m.historySection()
		history.ReplaceAll(items)
		m.updateAvatarVisibility(history)
		m.emit(RefreshSection{Section: SectionHistory})

		// Record every fetched message so a later socket sighting merges
		// instead of rendering a duplicate row.
		for _, msg := range res.Messages {
			if len(m.received.sources(msg.ID)) == 0 {
				m.received.record(apiSource(msg, nil))
			}
		}

		if n := len(res.Messages); n > 0 {
			last := res.Messages[n-1]
			if gva, ok := gvaFromMessage(last); ok && gva.Kind == GvaQuickReplies {
				m.emit(QuickReplyPropsUpdated{Buttons: gva.Buttons})
			}
		}

		m.historyLoaded = true
		if !m.leavePending {
			m.scheduleMarkRead()
		}

		if m.itr.State().Kind == interactor.StateEngaged {
			m.signalUpgrade()
		}
	})
}

func (m *TranscriptModel) historyItem(msg coresdk.ChatMessage) Item {
	if msg.Sender == coresdk.SenderVisitor {
		return NewVisitorItem(msg, "")
	}
	return itemForMessage(msg)
}

// scheduleMarkRead clears the unread counter after the configured delay.
// The task re-checks state when it fires: conditions may have changed
// while it was pending.
func (m *TranscriptModel) scheduleMarkRead() {
	if m.markReadTask != nil {
		m.markReadTask.Cancel()
	}
	m.markReadTask = m.clock.AfterFunc(m.markReadDelay, func() {
		m.markReadTask = nil
		if m.invalidated || m.leavePending {
			return
		}
		m.api.SecureMarkMessagesAsRead(func(err error) {
			if err != nil {
				slog.Warn("transcript: mark messages as read failed", "error", err)
			}
		})
	})
}

// checkQueueAvailability decides secure-conversation availability from
// the configured queues plus visitor authentication.
func (m *TranscriptModel) checkQueueAvailability() {
	m.api.ListQueues(func(queues []coresdk.Queue, err error) {
		if m.invalidated {
			return
		}
		if err != nil {
			slog.Warn("transcript: queue list fetch failed", "error", err)
			m.setUnavailable()
			return
		}

		open := false
		for _, q := range queues {
			if q.Status == coresdk.QueueOpen && q.SupportsMedia(coresdk.MediaMessaging) {
				open = true
				break
			}
		}
		if !open || !m.isAuth() {
			m.setUnavailable()
			return
		}

		m.available = true
		m.availabilityKnown = true
	})
}

// setUnavailable records the unavailable state and raises the message
// center alert exactly once.
func (m *TranscriptModel) setUnavailable() {
	m.available = false
	m.availabilityKnown = true
	if m.unavailableShown {
		return
	}
	m.unavailableShown = true
	m.notifyDelegate(ShowAlert{
		Input:  alert.Input{Kind: alert.KindUnavailableMessageCenter},
		AsView: true,
	})
}

// signalUpgrade asks the coordinator to swap in a live chat model. Fires
// at most once per model.
func (m *TranscriptModel) signalUpgrade() {
	if m.upgradeSignalled || !m.historyLoaded {
		return
	}
	m.upgradeSignalled = true
	m.notifyDelegate(UpgradeToChatEngagement{})
}
