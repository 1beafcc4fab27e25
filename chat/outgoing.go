package chat

import (
	"github.com/MikeSquared-Agency/engage/coresdk"
	"github.com/google/uuid"
)

// OutgoingMessage is a visitor-composed, not-yet-confirmed message.
// Exactly one exists per pending send until the confirmed message
// replaces it or the row is retracted through retry.
type OutgoingMessage struct {
	// ID is generated locally and echoed back by the backend so the
	// confirmation can be matched to this pending row.
	ID      string
	Content string
	Files   []coresdk.EngagementFile

	// Error holds the failed-to-deliver label once a send fails; empty
	// while in flight.
	Error string
}

// NewOutgoingMessage creates a pending message with a fresh local id.
func NewOutgoingMessage(content string, files []coresdk.EngagementFile) OutgoingMessage {
	return OutgoingMessage{
		ID:      uuid.New().String(),
		Content: content,
		Files:   files,
	}
}

// Payload builds the send request for this message.
func (o OutgoingMessage) Payload() coresdk.OutgoingPayload {
	p := coresdk.OutgoingPayload{
		MessageID: o.ID,
		Content:   o.Content,
	}
	if len(o.Files) > 0 {
		p.Attachment = &coresdk.Attachment{
			Kind:  coresdk.AttachmentFiles,
			Files: o.Files,
		}
	}
	return p
}
