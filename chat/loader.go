package chat

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/engage/coresdk"
	"github.com/MikeSquared-Agency/engage/scheduler"
)

// HistoryResult is one combined history load: the persisted messages
// oldest-first plus the unread count at load time.
type HistoryResult struct {
	Messages    []coresdk.ChatMessage
	UnreadCount int
}

// HistoryLoader composes the unread-count fetch and the history fetch
// into one load with a single completion. A failed unread fetch degrades
// to zero; a failed history fetch fails the load and callers decide the
// policy (the transcript model degrades to an empty list).
type HistoryLoader struct {
	api     coresdk.API
	clock   scheduler.Clock
	timeout time.Duration
}

// NewHistoryLoader creates a loader. timeout bounds the combined load;
// zero disables the bound.
func NewHistoryLoader(api coresdk.API, clock scheduler.Clock, timeout time.Duration) *HistoryLoader {
	return &HistoryLoader{api: api, clock: clock, timeout: timeout}
}

// Load runs both fetches and completes exactly once, even when the
// timeout fires while a fetch is still in flight.
func (l *HistoryLoader) Load(complete func(HistoryResult, error)) {
	done := false
	finish := func(res HistoryResult, err error) {
		if done {
			return
		}
		done = true
		complete(res, err)
	}

	var timeoutTask scheduler.Task
	if l.timeout > 0 {
		timeoutTask = l.clock.AfterFunc(l.timeout, func() {
			finish(HistoryResult{}, fmt.Errorf("history load timed out after %s", l.timeout))
		})
	}

	l.api.GetSecureUnreadMessageCount(func(count int, err error) {
		if err != nil {
			slog.Warn("chat: unread count fetch failed, assuming zero", "error", err)
			count = 0
		}
		l.api.FetchChatHistory(func(messages []coresdk.ChatMessage, err error) {
			if timeoutTask != nil {
				timeoutTask.Cancel()
			}
			if err != nil {
				finish(HistoryResult{}, fmt.Errorf("fetch chat history: %w", err))
				return
			}
			finish(HistoryResult{Messages: messages, UnreadCount: count}, nil)
		})
	})
}
