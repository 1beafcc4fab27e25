package alert

import (
	"fmt"

	"github.com/MikeSquared-Agency/engage/coresdk"
)

// Strings carries the localized copy alerts are composed from. The host
// supplies these; defaults are developer English.
type Strings struct {
	UnexpectedErrorTitle     string
	UnexpectedErrorMessage   string
	UnavailableMessageCenter string
	OperatorEndedEngagement  string
	LeaveConversationTitle   string
	LeaveConversationMessage string
	AuthenticationExpired    string
	QueueClosed              string
	QueueFull                string
	AudioUpgradeTitle        string
	VideoUpgradeTitle        string
	ScreenShareTitle         string
	Accept                   string
	Decline                  string
	OK                       string
	Cancel                   string
}

// DefaultStrings returns the fallback copy used when the host provides none.
func DefaultStrings() Strings {
	return Strings{
		UnexpectedErrorTitle:     "Something went wrong",
		UnexpectedErrorMessage:   "Please try again later.",
		UnavailableMessageCenter: "The message center is currently unavailable.",
		OperatorEndedEngagement:  "The operator has ended the engagement.",
		LeaveConversationTitle:   "Leave conversation?",
		LeaveConversationMessage: "Your conversation history will be kept.",
		AuthenticationExpired:    "Your session has expired. Please sign in again.",
		QueueClosed:              "We are currently closed.",
		QueueFull:                "All operators are busy. Please try again later.",
		AudioUpgradeTitle:        "Operator would like to start an audio call",
		VideoUpgradeTitle:        "Operator would like to start a video call",
		ScreenShareTitle:         "Operator would like to see your screen",
		Accept:                   "Accept",
		Decline:                  "Decline",
		OK:                       "OK",
		Cancel:                   "Cancel",
	}
}

// Composer builds renderable alert content from input events.
type Composer struct {
	strings Strings
}

// NewComposer creates a composer over the given copy.
func NewComposer(s Strings) *Composer {
	return &Composer{strings: s}
}

// Compose maps an input onto its content. An unsupported media offer
// kind is a composition error; callers drop the alert and present
// nothing in that case.
func (c *Composer) Compose(in Input) (Content, error) {
	s := c.strings
	switch in.Kind {
	case KindUnexpectedError, KindMessageSendFailed:
		msg := in.Message
		if msg == "" {
			msg = s.UnexpectedErrorMessage
		}
		return Content{
			Style:   StyleSystemAlert,
			Title:   s.UnexpectedErrorTitle,
			Message: msg,
			Buttons: []Button{{Title: s.OK, Action: "dismiss"}},
		}, nil
	case KindUnavailableMessageCenter:
		return Content{
			Style:   StyleViewOverlay,
			Message: s.UnavailableMessageCenter,
		}, nil
	case KindOperatorEndedEngagement:
		return Content{
			Style:   StyleModal,
			Message: s.OperatorEndedEngagement,
			Buttons: []Button{{Title: s.OK, Action: "finish"}},
		}, nil
	case KindLeaveConversation:
		return Content{
			Style:   StyleSystemAlert,
			Title:   s.LeaveConversationTitle,
			Message: s.LeaveConversationMessage,
			Buttons: []Button{
				{Title: s.Cancel, Action: "dismiss"},
				{Title: s.OK, Action: "leave"},
			},
		}, nil
	case KindAuthenticationExpired:
		return Content{
			Style:   StyleSystemAlert,
			Message: s.AuthenticationExpired,
			Buttons: []Button{{Title: s.OK, Action: "finish"}},
		}, nil
	case KindQueueClosed:
		return Content{
			Style:   StyleModal,
			Message: s.QueueClosed,
			Buttons: []Button{{Title: s.OK, Action: "finish"}},
		}, nil
	case KindQueueFull:
		return Content{
			Style:   StyleModal,
			Message: s.QueueFull,
			Buttons: []Button{{Title: s.OK, Action: "finish"}},
		}, nil
	case KindScreenShareOffer:
		return Content{
			Style:   StyleSystemAlert,
			Title:   s.ScreenShareTitle,
			Buttons: []Button{
				{Title: s.Decline, Action: "decline"},
				{Title: s.Accept, Action: "accept"},
			},
		}, nil
	case KindMediaUpgrade:
		if in.Offer == nil {
			return Content{}, fmt.Errorf("media upgrade input missing offer")
		}
		var title string
		switch in.Offer.Kind {
		case coresdk.MediaOfferAudio:
			title = s.AudioUpgradeTitle
		case coresdk.MediaOfferVideo:
			title = s.VideoUpgradeTitle
		default:
			// One-way video and future offer kinds have no dialog copy.
			return Content{}, fmt.Errorf("unsupported media offer kind %q", in.Offer.Kind)
		}
		return Content{
			Style: StyleSystemAlert,
			Title: title,
			Buttons: []Button{
				{Title: s.Decline, Action: "decline"},
				{Title: s.Accept, Action: "accept"},
			},
		}, nil
	default:
		return Content{}, fmt.Errorf("unknown alert kind %q", in.Kind)
	}
}
