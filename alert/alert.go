// Package alert implements the priority-gated dialog presentation slot:
// composing alert content from input events and deciding whether a new
// alert may replace the one currently on screen.
package alert

import "github.com/MikeSquared-Agency/engage/coresdk"

// Priority orders alerts for the replacement gate.
type Priority int

const (
	PriorityRegular Priority = iota
	PriorityHigh
	PriorityHighest
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityHighest:
		return "highest"
	default:
		return "regular"
	}
}

// InputKind discriminates alert requests.
type InputKind string

const (
	KindUnexpectedError          InputKind = "unexpected_error"
	KindUnavailableMessageCenter InputKind = "unavailable_message_center"
	KindMediaUpgrade             InputKind = "media_upgrade"
	KindOperatorEndedEngagement  InputKind = "operator_ended_engagement"
	KindLeaveConversation        InputKind = "leave_conversation"
	KindAuthenticationExpired    InputKind = "authentication_expired"
	KindQueueClosed              InputKind = "queue_closed"
	KindQueueFull                InputKind = "queue_full"
	KindScreenShareOffer         InputKind = "screen_share_offer"
	KindMessageSendFailed        InputKind = "message_send_failed"
)

// Input is one alert request. Offer is set only for media upgrades.
type Input struct {
	Kind    InputKind
	Message string
	Offer   *coresdk.MediaOffer
}

// Priority maps input kinds onto the replacement gate ordering. Critical
// failures and live offers must never be displaced by routine dialogs.
func (in Input) Priority() Priority {
	switch in.Kind {
	case KindAuthenticationExpired, KindMediaUpgrade, KindScreenShareOffer:
		return PriorityHighest
	case KindOperatorEndedEngagement, KindQueueClosed, KindQueueFull:
		return PriorityHigh
	default:
		return PriorityRegular
	}
}

// equal is the structural equality used for re-presentation no-ops.
// Some kinds are deliberately never equal so a repeated event always
// re-presents (an operator ending a second engagement, a fresh offer).
func (in Input) equal(other Input) bool {
	switch in.Kind {
	case KindOperatorEndedEngagement, KindMediaUpgrade:
		return false
	}
	if in.Kind != other.Kind || in.Message != other.Message {
		return false
	}
	if (in.Offer == nil) != (other.Offer == nil) {
		return false
	}
	if in.Offer != nil && in.Offer.Kind != other.Offer.Kind {
		return false
	}
	return true
}

// PlacementKind selects where the alert window lives.
type PlacementKind string

const (
	// PlacementGlobal presents in the SDK's own window above all content.
	PlacementGlobal PlacementKind = "global"
	// PlacementRoot presents within a host-provided controller.
	PlacementRoot PlacementKind = "root"
)

// Placement is the requested presentation surface. Host identifies the
// root controller for PlacementRoot; empty for PlacementGlobal.
type Placement struct {
	Kind PlacementKind
	Host string
}

// Style is how the composed alert is rendered by the host.
type Style string

const (
	StyleSystemAlert Style = "system_alert"
	StyleModal       Style = "modal"
	StyleViewOverlay Style = "view_overlay"
)

// Button is one action on a composed alert.
type Button struct {
	Title  string
	Action string
}

// Content is the fully composed, renderable alert.
type Content struct {
	Style   Style
	Title   string
	Message string
	Buttons []Button
}

// Alert is the live slot value: the input that produced it, its composed
// content, and where it is presented.
type Alert struct {
	Input     Input
	Content   Content
	Placement Placement
}
