// Package testutil provides in-memory test doubles for the backend API
// boundary and a manually driven clock.
package testutil

import (
	"fmt"
	"sync"

	"github.com/MikeSquared-Agency/engage/coresdk"
)

// MockAPI is an in-memory implementation of coresdk.API for testing.
// Completions run synchronously unless calls are held with Hold, in
// which case they are released explicitly via Release.
type MockAPI struct {
	mu sync.Mutex

	History     []coresdk.ChatMessage
	UnreadCount int
	Queues      []coresdk.Queue
	Site        coresdk.SiteConfiguration

	HistoryErr error
	UnreadErr  error
	SendErr    error
	QueuesErr  error
	SiteErr    error
	MarkErr    error

	// SentPayloads records every send in order.
	SentPayloads []coresdk.OutgoingPayload
	// SendResult builds the confirmed message for a payload. Nil echoes
	// the payload back with the same id.
	SendResult func(coresdk.OutgoingPayload) coresdk.ChatMessage

	HistoryCalls int
	UnreadCalls  int
	SendCalls    int
	MarkCalls    int
	QueueCalls   int
	SiteCalls    int
	SocketStarts int
	SocketStops  int

	held    bool
	pending []func()
}

// NewMockAPI creates a mock with secure conversations enabled and one
// open messaging queue.
func NewMockAPI() *MockAPI {
	return &MockAPI{
		Site: coresdk.SiteConfiguration{SecureConversationsEnabled: true},
		Queues: []coresdk.Queue{{
			ID:     "queue-1",
			Name:   "Support",
			Status: coresdk.QueueOpen,
			Media:  []coresdk.MediaType{coresdk.MediaText, coresdk.MediaMessaging},
		}},
	}
}

// Hold buffers completions until Release is called.
func (m *MockAPI) Hold() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held = true
}

// Release runs all buffered completions in order and resumes synchronous
// delivery.
func (m *MockAPI) Release() {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.held = false
	m.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

func (m *MockAPI) complete(fn func()) {
	m.mu.Lock()
	if m.held {
		m.pending = append(m.pending, fn)
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	fn()
}

func (m *MockAPI) FetchChatHistory(complete func([]coresdk.ChatMessage, error)) {
	m.mu.Lock()
	m.HistoryCalls++
	history := append([]coresdk.ChatMessage(nil), m.History...)
	err := m.HistoryErr
	m.mu.Unlock()
	m.complete(func() { complete(history, err) })
}

func (m *MockAPI) GetSecureUnreadMessageCount(complete func(int, error)) {
	m.mu.Lock()
	m.UnreadCalls++
	count := m.UnreadCount
	err := m.UnreadErr
	m.mu.Unlock()
	m.complete(func() { complete(count, err) })
}

func (m *MockAPI) SendSecureMessagePayload(payload coresdk.OutgoingPayload, _ []string, complete func(coresdk.ChatMessage, error)) {
	m.mu.Lock()
	m.SendCalls++
	m.SentPayloads = append(m.SentPayloads, payload)
	err := m.SendErr
	build := m.SendResult
	m.mu.Unlock()

	if err != nil {
		m.complete(func() { complete(coresdk.ChatMessage{}, err) })
		return
	}
	msg := coresdk.ChatMessage{
		ID:      payload.MessageID,
		Content: payload.Content,
		Sender:  coresdk.SenderVisitor,
	}
	if build != nil {
		msg = build(payload)
	}
	m.complete(func() { complete(msg, nil) })
}

func (m *MockAPI) SecureMarkMessagesAsRead(complete func(error)) {
	m.mu.Lock()
	m.MarkCalls++
	err := m.MarkErr
	m.mu.Unlock()
	m.complete(func() { complete(err) })
}

func (m *MockAPI) FetchSiteConfigurations(complete func(coresdk.SiteConfiguration, error)) {
	m.mu.Lock()
	m.SiteCalls++
	site := m.Site
	err := m.SiteErr
	m.mu.Unlock()
	m.complete(func() { complete(site, err) })
}

func (m *MockAPI) ListQueues(complete func([]coresdk.Queue, error)) {
	m.mu.Lock()
	m.QueueCalls++
	queues := append([]coresdk.Queue(nil), m.Queues...)
	err := m.QueuesErr
	m.mu.Unlock()
	m.complete(func() { complete(queues, err) })
}

func (m *MockAPI) StartSocketObservation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SocketStarts++
}

func (m *MockAPI) StopSocketObservation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SocketStops++
}

// OperatorMessage builds an operator message for test transcripts.
func OperatorMessage(id, content string) coresdk.ChatMessage {
	return coresdk.ChatMessage{
		ID:      id,
		Content: content,
		Sender:  coresdk.SenderOperator,
		Operator: &coresdk.Operator{
			ID:       "op-1",
			Name:     "Sam",
			ImageURL: "https://example.com/op.png",
		},
	}
}

// VisitorMessage builds a visitor message for test transcripts.
func VisitorMessage(id, content string) coresdk.ChatMessage {
	return coresdk.ChatMessage{ID: id, Content: content, Sender: coresdk.SenderVisitor}
}

// QuickReplyMessage builds a virtual-assistant quick-reply message.
func QuickReplyMessage(id string, options ...string) coresdk.ChatMessage {
	meta := `{"glia_virtual_assistant":{"type":"quickReplies","options":[`
	for i, opt := range options {
		if i > 0 {
			meta += ","
		}
		meta += fmt.Sprintf(`{"text":%q,"value":%q}`, opt, opt)
	}
	meta += `]}}`
	return coresdk.ChatMessage{
		ID:       id,
		Sender:   coresdk.SenderVirtualAssistant,
		Metadata: []byte(meta),
	}
}
