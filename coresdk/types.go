// Package coresdk defines the boundary with the backend conversation
// platform: the message and engagement types the core consumes, the
// callback-based API it calls, and thin REST/socket adapters implementing
// that API. Signaling and media transport stay on the backend side of
// this boundary.
package coresdk

import (
	"encoding/json"
	"time"
)

// Sender identifies who authored a chat message.
type Sender string

const (
	SenderVisitor          Sender = "visitor"
	SenderOperator         Sender = "operator"
	SenderSystem           Sender = "system"
	SenderVirtualAssistant Sender = "virtual_assistant"
)

// Operator is the human agent attached to an engagement.
type Operator struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// AttachmentKind discriminates message attachments.
type AttachmentKind string

const (
	AttachmentFiles                AttachmentKind = "files"
	AttachmentSingleChoice         AttachmentKind = "single_choice"
	AttachmentSingleChoiceResponse AttachmentKind = "single_choice_response"
)

// ChoiceOption is one selectable option on a choice card.
type ChoiceOption struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

// EngagementFile describes an uploaded or downloadable file reference.
type EngagementFile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url,omitempty"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
	IsDeleted   bool   `json:"is_deleted,omitempty"`
}

// Attachment is the optional payload carried by a chat message.
type Attachment struct {
	Kind           AttachmentKind   `json:"kind"`
	Files          []EngagementFile `json:"files,omitempty"`
	Options        []ChoiceOption   `json:"options,omitempty"`
	SelectedOption string           `json:"selected_option,omitempty"`
	ImageURL       string           `json:"image_url,omitempty"`
}

// ChatMessage is one confirmed message as the backend reports it, via
// REST history or the socket stream. Metadata carries renderer payloads
// (virtual-assistant elements, custom cards) opaque to this boundary.
type ChatMessage struct {
	ID         string          `json:"id"`
	Content    string          `json:"content"`
	Sender     Sender          `json:"sender"`
	Operator   *Operator       `json:"operator,omitempty"`
	Attachment *Attachment     `json:"attachment,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// MetadataField extracts a string field from the message metadata JSON.
func (m *ChatMessage) MetadataField(key string) string {
	var fields map[string]any
	if err := json.Unmarshal(m.Metadata, &fields); err != nil {
		return ""
	}
	if v, ok := fields[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// QueueStatus is the lifecycle state of a routing queue.
type QueueStatus string

const (
	QueueOpen      QueueStatus = "open"
	QueueClosed    QueueStatus = "closed"
	QueueFull      QueueStatus = "full"
	QueueUnstaffed QueueStatus = "unstaffed"
)

// MediaType names an engagement medium a queue can route.
type MediaType string

const (
	MediaText      MediaType = "text"
	MediaAudio     MediaType = "audio"
	MediaVideo     MediaType = "video"
	MediaMessaging MediaType = "messaging"
)

// Queue is a routing queue as reported by the site configuration.
type Queue struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Status QueueStatus `json:"status"`
	Media  []MediaType `json:"media"`
}

// SupportsMedia reports whether the queue routes the given medium.
func (q Queue) SupportsMedia(mt MediaType) bool {
	for _, m := range q.Media {
		if m == mt {
			return true
		}
	}
	return false
}

// SiteConfiguration is the remote site-level feature switchboard.
type SiteConfiguration struct {
	SiteID                     string `json:"site_id"`
	SecureConversationsEnabled bool   `json:"secure_conversations_enabled"`
	ConfirmLeaveDialogEnabled  bool   `json:"confirm_leave_dialog_enabled"`
}

// MediaOfferKind discriminates media upgrade offers.
type MediaOfferKind string

const (
	MediaOfferAudio  MediaOfferKind = "audio"
	MediaOfferVideo  MediaOfferKind = "video"
	MediaOfferOneWay MediaOfferKind = "video_one_way"
)

// MediaOffer is an operator-initiated request to escalate the engagement.
type MediaOffer struct {
	Kind MediaOfferKind `json:"kind"`
}

// OutgoingPayload is the send-message request body built from a locally
// composed message. MessageID is generated client-side so the confirmed
// message can be reconciled against the pending row.
type OutgoingPayload struct {
	MessageID  string      `json:"message_id"`
	Content    string      `json:"content"`
	Attachment *Attachment `json:"attachment,omitempty"`
}
