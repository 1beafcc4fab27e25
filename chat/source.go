package chat

import (
	"strings"

	"github.com/MikeSquared-Agency/engage/coresdk"
)

// messageSource is one sighting of a message through one transport:
// either the REST confirmation of a send (paired with the outgoing
// message that produced it) or a socket-delivered message.
type messageSource struct {
	message  coresdk.ChatMessage
	outgoing *OutgoingMessage
	socket   bool
}

func apiSource(msg coresdk.ChatMessage, out *OutgoingMessage) messageSource {
	return messageSource{message: msg, outgoing: out}
}

func socketSource(msg coresdk.ChatMessage) messageSource {
	return messageSource{message: msg, socket: true}
}

// receivedMessages is the per-id reconciliation log: every sighting of a
// message id appends here in arrival order, and the log is never pruned
// within a session. An empty list for an id means first sighting.
//
// Keys are upper-cased: REST and socket transports disagree on id casing
// and must land on the same entry.
type receivedMessages map[string][]messageSource

func messageKey(id string) string {
	return strings.ToUpper(id)
}

func (r receivedMessages) sources(id string) []messageSource {
	return r[messageKey(id)]
}

func (r receivedMessages) record(src messageSource) []messageSource {
	key := messageKey(src.message.ID)
	r[key] = append(r[key], src)
	return r[key]
}

// bestMessage selects the message body to render: the most recent
// sighting carrying an attachment wins, because socket messages carry
// attachment metadata that REST responses may omit. Falls back to the
// newly arrived message.
func bestMessage(sources []messageSource, fallback coresdk.ChatMessage) coresdk.ChatMessage {
	for i := len(sources) - 1; i >= 0; i-- {
		if sources[i].message.Attachment != nil {
			return sources[i].message
		}
	}
	return fallback
}

// bestOutgoing selects the outgoing message to visually complete: the
// most recent sighting that carries one, or nil when no sighting does.
func bestOutgoing(sources []messageSource) *OutgoingMessage {
	for i := len(sources) - 1; i >= 0; i-- {
		if sources[i].outgoing != nil {
			return sources[i].outgoing
		}
	}
	return nil
}
