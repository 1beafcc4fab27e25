package chat

import (
	"errors"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/engage/alert"
	"github.com/MikeSquared-Agency/engage/interactor"
	"github.com/MikeSquared-Agency/engage/internal/testutil"
)

var errTransient = errors.New("transient backend failure")

func newTranscriptHarness(api *testutil.MockAPI, clock *testutil.ManualClock, authenticated bool) (*TranscriptModel, *sinkRecorder) {
	rec := &sinkRecorder{}
	m := NewTranscriptModel(TranscriptModelConfig{
		API:             api,
		Interactor:      interactor.New(api, []string{"q1"}),
		Clock:           clock,
		IsAuthenticated: func() bool { return authenticated },
	})
	m.SetActionSink(rec.action)
	m.SetDelegate(rec.delegate)
	m.Dispatch(ViewDidLoad{})
	return m, rec
}

func unavailableAlertCount(rec *sinkRecorder) int {
	n := 0
	for _, e := range rec.delegates {
		if sa, ok := e.(ShowAlert); ok && sa.Input.Kind == alert.KindUnavailableMessageCenter && sa.AsView {
			n++
		}
	}
	return n
}

func TestTranscriptStart_RendersHistoryWithUnreadDivider(t *testing.T) {
	api := testutil.NewMockAPI()
	api.History = append(api.History,
		testutil.OperatorMessage("m1", "one"),
		testutil.VisitorMessage("m2", "two"),
		testutil.OperatorMessage("m3", "three"),
	)
	api.UnreadCount = 2

	m, _ := newTranscriptHarness(api, testutil.NewManualClock(), true)
	m.Start()

	history := m.historySection()
	if history.ItemCount() != 4 {
		t.Fatalf("expected 3 messages plus divider, got %d rows", history.ItemCount())
	}
	if got := history.Item(1).Kind; got != ItemUnreadDivider {
		t.Errorf("expected divider before the 2 unread rows, got %s at row 1", got)
	}

	after := 0
	for row := 2; row < history.ItemCount(); row++ {
		if history.Item(row).Kind != ItemUnreadDivider {
			after++
		}
	}
	if after != 2 {
		t.Errorf("expected exactly 2 rows after the divider, got %d", after)
	}
}

func TestTranscriptStart_NoDividerWhenNothingUnread(t *testing.T) {
	api := testutil.NewMockAPI()
	api.History = append(api.History, testutil.OperatorMessage("m1", "one"))
	api.UnreadCount = 0

	m, _ := newTranscriptHarness(api, testutil.NewManualClock(), true)
	m.Start()

	for row := 0; row < m.historySection().ItemCount(); row++ {
		if m.historySection().Item(row).Kind == ItemUnreadDivider {
			t.Fatal("expected no divider with zero unread")
		}
	}
}

func TestTranscriptStart_DividerSkippedWhenCountExceedsHistory(t *testing.T) {
	api := testutil.NewMockAPI()
	api.History = append(api.History, testutil.OperatorMessage("m1", "one"))
	api.UnreadCount = 5

	m, _ := newTranscriptHarness(api, testutil.NewManualClock(), true)
	m.Start()

	if m.historySection().ItemCount() != 1 {
		t.Errorf("expected inconsistent unread count ignored, got %d rows", m.historySection().ItemCount())
	}
}

func TestTranscriptStart_HistoryFailureRendersEmpty(t *testing.T) {
	api := testutil.NewMockAPI()
	api.HistoryErr = errTransient

	m, rec := newTranscriptHarness(api, testutil.NewManualClock(), true)
	m.Start()

	if got := m.historySection().ItemCount(); got != 0 {
		t.Errorf("expected empty history on load failure, got %d rows", got)
	}
	if rec.countActions(func(a Action) bool { _, ok := a.(RefreshSection); return ok }) == 0 {
		t.Errorf("expected the empty history still refreshed")
	}
}

func TestTranscript_SocketDuplicateOfHistoryIsMerged(t *testing.T) {
	api := testutil.NewMockAPI()
	api.History = append(api.History, testutil.OperatorMessage("M1", "hello"))

	m, rec := newTranscriptHarness(api, testutil.NewManualClock(), true)
	m.Start()
	rec.reset()

	m.receiveSocketMessage(testutil.OperatorMessage("m1", "hello"))

	if got := m.pendingSection().ItemCount(); got != 0 {
		t.Errorf("expected socket duplicate of a history row not to render, got %d rows", got)
	}
	if rec.appendCount() != 0 {
		t.Errorf("expected no append for the duplicate, got %d", rec.appendCount())
	}
}

func TestTranscript_SocketArrivalDuringHistoryLoadRendersOnce(t *testing.T) {
	api := testutil.NewMockAPI()
	api.History = append(api.History, testutil.OperatorMessage("h1", "hello"))

	m, _ := newTranscriptHarness(api, testutil.NewManualClock(), true)
	api.Hold()
	m.Start()

	// The socket delivers h1 while the history fetch is still in flight.
	m.receiveSocketMessage(testutil.OperatorMessage("H1", "hello"))
	if got := m.pendingSection().ItemCount(); got != 1 {
		t.Fatalf("expected the socket arrival rendered, got %d rows", got)
	}

	api.Release()

	count := 0
	for _, s := range []interface {
		ItemCount() int
		Item(int) Item
	}{m.historySection(), m.pendingSection()} {
		for row := 0; row < s.ItemCount(); row++ {
			if s.Item(row).matchesID("h1") {
				count++
			}
		}
	}
	if count != 1 {
		t.Errorf("expected exactly 1 rendered row for the message, got %d", count)
	}
}

func TestTranscript_MarkReadFiresAfterDelay(t *testing.T) {
	api := testutil.NewMockAPI()
	clock := testutil.NewManualClock()

	m, _ := newTranscriptHarness(api, clock, true)
	m.Start()

	if api.MarkCalls != 0 {
		t.Fatalf("expected mark-read deferred, got %d calls", api.MarkCalls)
	}
	clock.Advance(DefaultMarkReadDelay)
	if api.MarkCalls != 1 {
		t.Errorf("expected 1 mark-read call after delay, got %d", api.MarkCalls)
	}
}

func TestTranscript_LeaveRequestCancelsMarkRead(t *testing.T) {
	api := testutil.NewMockAPI()
	clock := testutil.NewManualClock()

	m, rec := newTranscriptHarness(api, clock, true)
	m.Start()

	m.Dispatch(LeaveConversationRequested{})
	clock.Advance(DefaultMarkReadDelay)

	if api.MarkCalls != 0 {
		t.Errorf("expected mark-read cancelled by leave request, got %d calls", api.MarkCalls)
	}

	leaveAlerts := 0
	for _, e := range rec.delegates {
		if sa, ok := e.(ShowAlert); ok && sa.Input.Kind == alert.KindLeaveConversation {
			leaveAlerts++
		}
	}
	if leaveAlerts != 1 {
		t.Errorf("expected 1 leave confirmation alert, got %d", leaveAlerts)
	}
}

func TestTranscript_LeaveDeclinedReschedulesMarkRead(t *testing.T) {
	api := testutil.NewMockAPI()
	clock := testutil.NewManualClock()

	m, _ := newTranscriptHarness(api, clock, true)
	m.Start()

	m.Dispatch(LeaveConversationRequested{})
	m.Dispatch(LeaveConversationResolved{Confirmed: false})
	clock.Advance(DefaultMarkReadDelay)

	if api.MarkCalls != 1 {
		t.Errorf("expected mark-read rescheduled after declined leave, got %d calls", api.MarkCalls)
	}
}

func TestTranscript_LeaveConfirmedFinishes(t *testing.T) {
	api := testutil.NewMockAPI()

	m, rec := newTranscriptHarness(api, testutil.NewManualClock(), true)
	m.Start()

	m.Dispatch(LeaveConversationRequested{})
	m.Dispatch(LeaveConversationResolved{Confirmed: true})

	finished := false
	for _, e := range rec.delegates {
		if _, ok := e.(Finished); ok {
			finished = true
		}
	}
	if !finished {
		t.Error("expected finished delegate after confirmed leave")
	}
}

func TestTranscript_UnavailableWhenFeatureDisabled(t *testing.T) {
	api := testutil.NewMockAPI()
	api.Site.SecureConversationsEnabled = false

	m, rec := newTranscriptHarness(api, testutil.NewManualClock(), true)
	m.Start()

	if m.IsSecureConversationsAvailable() {
		t.Error("expected unavailable with the feature disabled")
	}
	if got := unavailableAlertCount(rec); got != 1 {
		t.Errorf("expected exactly 1 unavailable alert, got %d", got)
	}
}

func TestTranscript_UnavailableWhenNoOpenMessagingQueue(t *testing.T) {
	api := testutil.NewMockAPI()
	api.Queues = nil

	m, rec := newTranscriptHarness(api, testutil.NewManualClock(), true)
	m.Start()

	if m.IsSecureConversationsAvailable() {
		t.Error("expected unavailable with no open messaging queue")
	}
	if got := unavailableAlertCount(rec); got != 1 {
		t.Errorf("expected exactly 1 unavailable alert, got %d", got)
	}
}

func TestTranscript_UnavailableWhenUnauthenticated(t *testing.T) {
	api := testutil.NewMockAPI()

	m, _ := newTranscriptHarness(api, testutil.NewManualClock(), false)
	m.Start()

	if m.IsSecureConversationsAvailable() {
		t.Error("expected unavailable for unauthenticated visitor")
	}
}

func TestTranscript_AvailableWithOpenQueueAndAuth(t *testing.T) {
	api := testutil.NewMockAPI()

	m, rec := newTranscriptHarness(api, testutil.NewManualClock(), true)
	m.Start()

	if !m.IsSecureConversationsAvailable() {
		t.Error("expected available with open queue and authenticated visitor")
	}
	if got := unavailableAlertCount(rec); got != 0 {
		t.Errorf("expected no unavailable alert, got %d", got)
	}
}

func TestTranscript_SendBlockedWhileUnavailable(t *testing.T) {
	api := testutil.NewMockAPI()
	api.Site.SecureConversationsEnabled = false

	m, rec := newTranscriptHarness(api, testutil.NewManualClock(), true)
	m.Start()
	rec.reset()

	m.Dispatch(MessageTextChanged{Text: "hello"})
	m.Dispatch(SendTapped{})

	if api.SendCalls != 0 {
		t.Errorf("expected no send while unavailable, got %d", api.SendCalls)
	}
	if got := unavailableAlertCount(rec); got != 1 {
		t.Errorf("expected the unavailable alert re-raised on send, got %d", got)
	}
}

func TestTranscript_UpgradeSignalledOnceAfterHistory(t *testing.T) {
	api := testutil.NewMockAPI()

	m, rec := newTranscriptHarness(api, testutil.NewManualClock(), true)
	m.Start()

	m.itr.SetState(interactor.State{Kind: interactor.StateEngaged})
	m.itr.SetState(interactor.State{Kind: interactor.StateEngaged})

	upgrades := 0
	for _, e := range rec.delegates {
		if _, ok := e.(UpgradeToChatEngagement); ok {
			upgrades++
		}
	}
	if upgrades != 1 {
		t.Errorf("expected exactly 1 upgrade signal, got %d", upgrades)
	}
}

func TestTranscript_UpgradeWaitsForHistory(t *testing.T) {
	api := testutil.NewMockAPI()
	api.Hold()

	m, rec := newTranscriptHarness(api, testutil.NewManualClock(), true)
	m.Start()

	m.itr.SetState(interactor.State{Kind: interactor.StateEngaged})
	for _, e := range rec.delegates {
		if _, ok := e.(UpgradeToChatEngagement); ok {
			t.Fatal("expected no upgrade before history load")
		}
	}

	// Once history lands, the deferred engaged state triggers the signal.
	api.Release()
	upgrades := 0
	for _, e := range rec.delegates {
		if _, ok := e.(UpgradeToChatEngagement); ok {
			upgrades++
		}
	}
	if upgrades != 1 {
		t.Errorf("expected upgrade after history load, got %d", upgrades)
	}
}

func TestTranscript_StopCancelsScheduledWork(t *testing.T) {
	api := testutil.NewMockAPI()
	clock := testutil.NewManualClock()

	m, _ := newTranscriptHarness(api, clock, true)
	m.Start()
	m.Stop()

	clock.Advance(DefaultMarkReadDelay + time.Second)

	if api.MarkCalls != 0 {
		t.Errorf("expected stopped model never to mark read, got %d calls", api.MarkCalls)
	}
}

func TestTranscript_QuickRepliesSurfacedFromSocket(t *testing.T) {
	api := testutil.NewMockAPI()

	m, rec := newTranscriptHarness(api, testutil.NewManualClock(), true)
	m.Start()
	rec.reset()

	m.receiveSocketMessage(testutil.QuickReplyMessage("qr-1", "Yes", "No"))

	var buttons []GvaButton
	for _, a := range rec.actions {
		if qr, ok := a.(QuickReplyPropsUpdated); ok {
			buttons = qr.Buttons
		}
	}
	if len(buttons) != 2 || buttons[0].Text != "Yes" {
		t.Errorf("unexpected quick reply buttons: %+v", buttons)
	}
	if got := m.pendingSection().Item(0).Kind; got != ItemGvaQuickReply {
		t.Errorf("expected quick-reply row, got %s", got)
	}
}
