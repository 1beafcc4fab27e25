package alert

import (
	"testing"

	"github.com/MikeSquared-Agency/engage/coresdk"
)

// recordingPresenter captures every present and dismiss in order.
type recordingPresenter struct {
	presented []Alert
	dismissed []Alert
}

func (p *recordingPresenter) Present(a Alert) { p.presented = append(p.presented, a) }
func (p *recordingPresenter) Dismiss(a Alert) { p.dismissed = append(p.dismissed, a) }

func newTestManager() (*Manager, *recordingPresenter) {
	p := &recordingPresenter{}
	return NewManager(NewComposer(DefaultStrings()), p), p
}

func global() Placement { return Placement{Kind: PlacementGlobal} }

func TestPresent_IdleSlot(t *testing.T) {
	m, p := newTestManager()

	d := m.Present(Input{Kind: KindUnexpectedError}, global())

	if d != DecisionPresented {
		t.Errorf("expected presented, got %s", d)
	}
	if len(p.presented) != 1 {
		t.Fatalf("expected 1 presentation, got %d", len(p.presented))
	}
	if m.Current() == nil || m.Current().Input.Kind != KindUnexpectedError {
		t.Errorf("expected current alert set, got %+v", m.Current())
	}
}

func TestPresent_LowerPriorityIsSuppressed(t *testing.T) {
	m, p := newTestManager()

	m.Present(Input{Kind: KindAuthenticationExpired}, global())
	d := m.Present(Input{Kind: KindUnexpectedError}, global())

	if d != DecisionSuppressed {
		t.Errorf("expected suppressed, got %s", d)
	}
	if len(p.presented) != 1 {
		t.Errorf("expected the auth alert to stay, got %d presentations", len(p.presented))
	}
	if m.Current().Input.Kind != KindAuthenticationExpired {
		t.Errorf("expected auth alert to remain current, got %s", m.Current().Input.Kind)
	}
}

func TestPresent_EqualPriorityReplaces(t *testing.T) {
	m, p := newTestManager()

	m.Present(Input{Kind: KindQueueClosed}, global())
	d := m.Present(Input{Kind: KindQueueFull}, global())

	if d != DecisionReplaced {
		t.Errorf("expected replaced, got %s", d)
	}
	if len(p.dismissed) != 1 || p.dismissed[0].Input.Kind != KindQueueClosed {
		t.Errorf("expected old alert dismissed first, got %+v", p.dismissed)
	}
	if m.Current().Input.Kind != KindQueueFull {
		t.Errorf("expected queue-full current, got %s", m.Current().Input.Kind)
	}
}

func TestPresent_DuplicateIsNoop(t *testing.T) {
	m, p := newTestManager()

	m.Present(Input{Kind: KindUnexpectedError, Message: "oops"}, global())
	d := m.Present(Input{Kind: KindUnexpectedError, Message: "oops"}, global())

	if d != DecisionDuplicate {
		t.Errorf("expected duplicate, got %s", d)
	}
	if len(p.presented) != 1 {
		t.Errorf("expected no re-presentation, got %d", len(p.presented))
	}
}

func TestPresent_OperatorEndedIsNeverDuplicate(t *testing.T) {
	m, p := newTestManager()

	m.Present(Input{Kind: KindOperatorEndedEngagement}, global())
	d := m.Present(Input{Kind: KindOperatorEndedEngagement}, global())

	if d != DecisionReplaced {
		t.Errorf("expected a repeated operator-ended alert to re-present, got %s", d)
	}
	if len(p.presented) != 2 {
		t.Errorf("expected 2 presentations, got %d", len(p.presented))
	}
}

func TestPresent_ComposeFailureDropsAlert(t *testing.T) {
	m, p := newTestManager()

	// Media upgrade without an offer cannot be composed.
	d := m.Present(Input{Kind: KindMediaUpgrade}, global())

	if d != DecisionFailed {
		t.Errorf("expected failed, got %s", d)
	}
	if len(p.presented) != 0 {
		t.Errorf("expected nothing presented, got %d", len(p.presented))
	}
	if m.Current() != nil {
		t.Errorf("expected slot still idle, got %+v", m.Current())
	}
}

func TestPresent_ComposeFailureKeepsCurrent(t *testing.T) {
	m, p := newTestManager()

	m.Present(Input{Kind: KindUnexpectedError}, global())
	d := m.Present(Input{
		Kind:  KindMediaUpgrade,
		Offer: &coresdk.MediaOffer{Kind: coresdk.MediaOfferOneWay},
	}, global())

	if d != DecisionFailed {
		t.Errorf("expected failed, got %s", d)
	}
	if len(p.dismissed) != 0 {
		t.Errorf("expected the current alert untouched, got %d dismissals", len(p.dismissed))
	}
	if m.Current() == nil || m.Current().Input.Kind != KindUnexpectedError {
		t.Errorf("expected current alert kept, got %+v", m.Current())
	}
}

func TestDismiss_ClearsSlot(t *testing.T) {
	m, p := newTestManager()

	m.Present(Input{Kind: KindLeaveConversation}, global())
	m.Dismiss()

	if m.Current() != nil {
		t.Errorf("expected empty slot, got %+v", m.Current())
	}
	if len(p.dismissed) != 1 {
		t.Errorf("expected 1 dismissal, got %d", len(p.dismissed))
	}

	// The slot is reusable after dismissal, including by lower priority.
	if d := m.Present(Input{Kind: KindUnexpectedError}, global()); d != DecisionPresented {
		t.Errorf("expected presented after dismissal, got %s", d)
	}
}

func TestDismiss_IdleIsNoop(t *testing.T) {
	m, p := newTestManager()

	m.Dismiss()

	if len(p.dismissed) != 0 {
		t.Errorf("expected no presenter call, got %d", len(p.dismissed))
	}
}

func TestDecisionHook_SeesEveryOutcome(t *testing.T) {
	m, _ := newTestManager()

	var decisions []Decision
	m.SetDecisionHook(func(d Decision) { decisions = append(decisions, d) })

	m.Present(Input{Kind: KindAuthenticationExpired}, global())
	m.Present(Input{Kind: KindUnexpectedError}, global())

	want := []Decision{DecisionPresented, DecisionSuppressed}
	if len(decisions) != len(want) {
		t.Fatalf("expected %d decisions, got %d", len(want), len(decisions))
	}
	for i := range want {
		if decisions[i] != want[i] {
			t.Errorf("decision %d: expected %s, got %s", i, want[i], decisions[i])
		}
	}
}

func TestPlacement_TravelsWithAlert(t *testing.T) {
	m, p := newTestManager()

	m.Present(Input{Kind: KindUnavailableMessageCenter}, Placement{Kind: PlacementRoot, Host: "conversation"})

	if got := p.presented[0].Placement; got.Kind != PlacementRoot || got.Host != "conversation" {
		t.Errorf("unexpected placement: %+v", got)
	}
}

func TestInputPriority_Ordering(t *testing.T) {
	cases := []struct {
		kind InputKind
		want Priority
	}{
		{KindUnexpectedError, PriorityRegular},
		{KindLeaveConversation, PriorityRegular},
		{KindMessageSendFailed, PriorityRegular},
		{KindUnavailableMessageCenter, PriorityRegular},
		{KindOperatorEndedEngagement, PriorityHigh},
		{KindQueueClosed, PriorityHigh},
		{KindQueueFull, PriorityHigh},
		{KindAuthenticationExpired, PriorityHighest},
		{KindMediaUpgrade, PriorityHighest},
		{KindScreenShareOffer, PriorityHighest},
	}
	for _, c := range cases {
		if got := (Input{Kind: c.kind}).Priority(); got != c.want {
			t.Errorf("%s: expected priority %s, got %s", c.kind, c.want, got)
		}
	}
}

func TestCompose_MediaUpgradeTitles(t *testing.T) {
	c := NewComposer(DefaultStrings())

	audio, err := c.Compose(Input{Kind: KindMediaUpgrade, Offer: &coresdk.MediaOffer{Kind: coresdk.MediaOfferAudio}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if audio.Title != DefaultStrings().AudioUpgradeTitle {
		t.Errorf("unexpected audio title: %q", audio.Title)
	}

	video, err := c.Compose(Input{Kind: KindMediaUpgrade, Offer: &coresdk.MediaOffer{Kind: coresdk.MediaOfferVideo}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if video.Title != DefaultStrings().VideoUpgradeTitle {
		t.Errorf("unexpected video title: %q", video.Title)
	}

	if _, err := c.Compose(Input{Kind: KindMediaUpgrade, Offer: &coresdk.MediaOffer{Kind: coresdk.MediaOfferOneWay}}); err == nil {
		t.Error("expected one-way video to fail composition")
	}
}
