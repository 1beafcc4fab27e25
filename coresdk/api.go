package coresdk

// API is the callback-based contract the conversation core consumes from
// the backend platform. Every call is single-shot: the completion fires
// exactly once, and implementations must deliver it on the session
// dispatch goroutine (the core mutates unsynchronized state from these
// callbacks).
type API interface {
	// FetchChatHistory loads the persisted transcript, oldest first.
	FetchChatHistory(complete func(messages []ChatMessage, err error))

	// GetSecureUnreadMessageCount reports how many persisted messages the
	// visitor has not yet read.
	GetSecureUnreadMessageCount(complete func(count int, err error))

	// SendSecureMessagePayload delivers a composed message to the given
	// queues and completes with the confirmed message.
	SendSecureMessagePayload(payload OutgoingPayload, queueIDs []string, complete func(ChatMessage, error))

	// SecureMarkMessagesAsRead clears the unread counter server-side.
	SecureMarkMessagesAsRead(complete func(error))

	// StartSocketObservation opens the live event stream. Events arrive
	// through the handler registered at construction time.
	StartSocketObservation()

	// StopSocketObservation closes the live event stream.
	StopSocketObservation()

	// FetchSiteConfigurations loads the site feature switchboard.
	FetchSiteConfigurations(complete func(SiteConfiguration, error))

	// ListQueues reports the routing queues configured for the site.
	ListQueues(complete func([]Queue, error))
}

// SocketHandler receives decoded events from the live socket stream.
// All callbacks arrive on the session dispatch goroutine.
type SocketHandler struct {
	OnMessage         func(ChatMessage)
	OnEngagementState func(EngagementStateEvent)
	OnMediaUpgrade    func(MediaOffer)
	OnScreenShare     func()
	OnQueueUpdate     func(Queue)
}

// EngagementStateEvent is a lifecycle transition reported by the socket.
type EngagementStateEvent struct {
	State    string    `json:"state"`
	Ticket   string    `json:"ticket,omitempty"`
	Operator *Operator `json:"operator,omitempty"`
}
