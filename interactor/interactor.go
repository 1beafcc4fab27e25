// Package interactor tracks the engagement lifecycle and fans backend
// events out to registered observers. It is the single source of truth
// for "what state is the current engagement in".
package interactor

import (
	"log/slog"

	"github.com/MikeSquared-Agency/engage/coresdk"
)

// StateKind enumerates engagement lifecycle states.
type StateKind string

const (
	StateNone       StateKind = "none"
	StateEnqueueing StateKind = "enqueueing"
	StateEnqueued   StateKind = "enqueued"
	StateEngaged    StateKind = "engaged"
	StateEnded      StateKind = "ended"
)

// EngagementKind is the medium an engagement was requested with.
type EngagementKind string

const (
	KindChat      EngagementKind = "chat"
	KindAudioCall EngagementKind = "audio_call"
	KindVideoCall EngagementKind = "video_call"
	KindMessaging EngagementKind = "messaging"
)

// State is the engagement lifecycle state plus the payload valid for its
// kind: Ticket while enqueued, Operator once engaged.
type State struct {
	Kind           StateKind
	EngagementKind EngagementKind
	Ticket         string
	Operator       *coresdk.Operator
}

// Event is a lifecycle or message event fanned out to observers.
type Event interface{ isEvent() }

// StateChanged reports an engagement lifecycle transition.
type StateChanged struct{ State State }

// ReceivedMessage carries a message that arrived through the socket.
type ReceivedMessage struct{ Message coresdk.ChatMessage }

// ScreenShareOffer reports an operator screen-share request.
type ScreenShareOffer struct{}

// UpgradeOffer reports an operator media escalation request.
type UpgradeOffer struct{ Offer coresdk.MediaOffer }

// VideoStreamAdded reports a new remote video stream.
type VideoStreamAdded struct{ StreamID string }

func (StateChanged) isEvent()     {}
func (ReceivedMessage) isEvent()  {}
func (ScreenShareOffer) isEvent() {}
func (UpgradeOffer) isEvent()     {}
func (VideoStreamAdded) isEvent() {}

// EventHandler receives interactor events. Handlers run synchronously on
// the session dispatch goroutine.
type EventHandler func(Event)

type observerEntry struct {
	owner  any
	handle EventHandler
}

// Interactor owns the engagement state machine and the observer list.
// Not safe for concurrent use; all calls must come from the session
// dispatch goroutine.
type Interactor struct {
	api       coresdk.API
	queueIDs  []string
	state     State
	observers []observerEntry
}

// New creates an interactor in StateNone.
func New(api coresdk.API, queueIDs []string) *Interactor {
	return &Interactor{
		api:      api,
		queueIDs: queueIDs,
		state:    State{Kind: StateNone},
	}
}

// State returns the current engagement state.
func (i *Interactor) State() State {
	return i.state
}

// QueueIDs returns the queues this interactor routes engagements to.
func (i *Interactor) QueueIDs() []string {
	return i.queueIDs
}

// AddObserver registers a handler keyed by its owner. One owner holds at
// most one handler; re-adding replaces the previous registration.
func (i *Interactor) AddObserver(owner any, handle EventHandler) {
	for idx, o := range i.observers {
		if o.owner == owner {
			i.observers[idx].handle = handle
			return
		}
	}
	i.observers = append(i.observers, observerEntry{owner: owner, handle: handle})
}

// RemoveObserver drops the handler registered by the given owner.
func (i *Interactor) RemoveObserver(owner any) {
	for idx, o := range i.observers {
		if o.owner == owner {
			i.observers = append(i.observers[:idx], i.observers[idx+1:]...)
			return
		}
	}
}

// SetState applies a lifecycle transition and notifies observers. A
// transition to the identical kind with the same ticket is still
// broadcast; observers decide relevance.
func (i *Interactor) SetState(s State) {
	prev := i.state.Kind
	i.state = s
	slog.Info("interactor: state changed", "from", prev, "to", s.Kind)
	i.notify(StateChanged{State: s})
}

// ReceiveMessage fans a socket message out to observers.
func (i *Interactor) ReceiveMessage(msg coresdk.ChatMessage) {
	i.notify(ReceivedMessage{Message: msg})
}

// OfferUpgrade fans a media escalation offer out to observers.
func (i *Interactor) OfferUpgrade(offer coresdk.MediaOffer) {
	i.notify(UpgradeOffer{Offer: offer})
}

// OfferScreenShare fans a screen-share offer out to observers.
func (i *Interactor) OfferScreenShare() {
	i.notify(ScreenShareOffer{})
}

// AddVideoStream fans a new remote video stream out to observers.
func (i *Interactor) AddVideoStream(streamID string) {
	i.notify(VideoStreamAdded{StreamID: streamID})
}

// Send delivers a composed message through the engagement transport.
func (i *Interactor) Send(payload coresdk.OutgoingPayload, complete func(coresdk.ChatMessage, error)) {
	i.api.SendSecureMessagePayload(payload, i.queueIDs, complete)
}

// EndSession tears the engagement down and resets to StateNone after
// broadcasting the terminal transition.
func (i *Interactor) EndSession() {
	if i.state.Kind == StateNone {
		return
	}
	i.SetState(State{Kind: StateEnded, EngagementKind: i.state.EngagementKind})
	i.state = State{Kind: StateNone}
}

func (i *Interactor) notify(e Event) {
	// Copy first: handlers may remove themselves mid-iteration.
	observers := make([]observerEntry, len(i.observers))
	copy(observers, i.observers)
	for _, o := range observers {
		o.handle(e)
	}
}
