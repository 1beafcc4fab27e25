package chat

import (
	"log/slog"

	"github.com/MikeSquared-Agency/engage/alert"
	"github.com/MikeSquared-Agency/engage/coresdk"
	"github.com/MikeSquared-Agency/engage/interactor"
)

// ChatModelConfig wires a ChatModel.
type ChatModelConfig struct {
	Core       CoreConfig
	API        coresdk.API
	Interactor *interactor.Interactor
}

// ChatModel drives a live chat engagement surface: messages flow through
// the engagement transport, lifecycle banners track the operator, and
// media escalation offers surface through the alert gate.
type ChatModel struct {
	conversationCore

	api coresdk.API
	itr *interactor.Interactor
}

// NewChatModel creates a live chat model. Call Start once the sinks are
// bound.
func NewChatModel(cfg ChatModelConfig) *ChatModel {
	return &ChatModel{
		conversationCore: newConversationCore(cfg.Core),
		api:              cfg.API,
		itr:              cfg.Interactor,
	}
}

// SetActionSink binds the UI directive stream.
func (m *ChatModel) SetActionSink(sink ActionSink) {
	m.action = sink
}

// SetDelegate binds the delegate event stream.
func (m *ChatModel) SetDelegate(sink DelegateSink) {
	m.delegate = sink
}

// Start attaches to the interactor and loads the engagement transcript.
func (m *ChatModel) Start() {
	m.api.StartSocketObservation()
	m.itr.AddObserver(m, m.handleInteractorEvent)
	m.loadHistory()

	if st := m.itr.State(); st.Kind == interactor.StateEngaged && st.Operator != nil {
		m.operatorConnected(*st.Operator)
	}
}

// Stop detaches the model from the interactor.
func (m *ChatModel) Stop() {
	m.itr.RemoveObserver(m)
	m.Invalidate()
}

// Dispatch consumes one presentation-layer event.
func (m *ChatModel) Dispatch(e Event) {
	if m.handleCommonEvent(e, m.send) {
		return
	}
	switch ev := e.(type) {
	case LeaveConversationRequested:
		m.notifyDelegate(ShowAlert{Input: alert.Input{Kind: alert.KindLeaveConversation}})
	case LeaveConversationResolved:
		if ev.Confirmed {
			m.itr.EndSession()
		}
	}
}

func (m *ChatModel) send(payload coresdk.OutgoingPayload, complete func(coresdk.ChatMessage, error)) {
	m.itr.Send(payload, complete)
}

func (m *ChatModel) handleInteractorEvent(e interactor.Event) {
	switch ev := e.(type) {
	case interactor.ReceivedMessage:
		m.receiveMessage(socketSource(ev.Message))
		if gva, ok := gvaFromMessage(ev.Message); ok && gva.Kind == GvaQuickReplies {
			m.emit(QuickReplyPropsUpdated{Buttons: gva.Buttons})
		}
	case interactor.StateChanged:
		m.handleStateChange(ev.State)
	case interactor.UpgradeOffer:
		offer := ev.Offer
		m.notifyDelegate(ShowAlert{Input: alert.Input{
			Kind:  alert.KindMediaUpgrade,
			Offer: &offer,
		}})
	case interactor.ScreenShareOffer:
		m.notifyDelegate(ShowAlert{Input: alert.Input{Kind: alert.KindScreenShareOffer}})
	case interactor.VideoStreamAdded:
		m.appendIncomingBanner(NewCallUpgradeItem())
	}
}

func (m *ChatModel) handleStateChange(st interactor.State) {
	switch st.Kind {
	case interactor.StateEnqueued:
		m.appendIncomingBanner(NewTransferringItem())
		m.emit(TransferringToOperator{})
	case interactor.StateEngaged:
		if st.Operator != nil {
			m.operatorConnected(*st.Operator)
		}
	case interactor.StateEnded:
		m.notifyDelegate(Finished{})
	}
}

func (m *ChatModel) operatorConnected(op coresdk.Operator) {
	// Replace a transferring banner rather than stacking banners.
	removed := m.pendingSection().RemoveAll(func(it Item) bool {
		return it.Kind == ItemTransferring
	})
	if len(removed) > 0 {
		m.emit(DeleteRows{Section: SectionPending, Rows: removed})
	}

	m.appendIncomingBanner(NewOperatorConnectedItem(op))
	m.emit(ConnectedToOperator{Name: op.Name, ImageURL: op.ImageURL})
	if op.ImageURL != "" {
		m.emit(UpdateItemsUserImage{URL: op.ImageURL})
	}
}

// appendIncomingBanner appends a non-message row; banners ignore the
// view-loaded gate because they mirror engagement state, not transcript
// content.
func (m *ChatModel) appendIncomingBanner(item Item) {
	m.appendIncoming(item)
}

// loadHistory renders the persisted transcript under the live session.
// Failure degrades to an empty list, same as the transcript surface.
func (m *ChatModel) loadHistory() {
	m.api.FetchChatHistory(func(messages []coresdk.ChatMessage, err error) {
		if m.invalidated {
			return
		}
		if err != nil {
			slog.Warn("chat: history load failed, rendering empty", "error", err)
			messages = nil
		}

		items := make([]Item, 0, len(messages))
		for _, msg := range messages {
			if len(m.received.sources(msg.ID)) > 0 {
				// Sighted through the socket while the fetch was in
				// flight; that id already has a rendered row.
				continue
			}
			if msg.Sender == coresdk.SenderVisitor {
				items = append(items, NewVisitorItem(msg, ""))
				continue
			}
			items = append(items, itemForMessage(msg))
		}

		history := m.historySection()
		history.ReplaceAll(items)
		m.updateAvatarVisibility(history)
		m.emit(RefreshSection{Section: SectionHistory})

		for _, msg := range messages {
			if len(m.received.sources(msg.ID)) == 0 {
				m.received.record(apiSource(msg, nil))
			}
		}
	})
}
