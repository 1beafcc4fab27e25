package chat

import (
	"encoding/json"

	"github.com/MikeSquared-Agency/engage/coresdk"
)

// GvaKind discriminates virtual-assistant interactive elements.
type GvaKind string

const (
	GvaQuickReplies      GvaKind = "quickReplies"
	GvaPersistentButtons GvaKind = "persistentButtons"
	GvaGalleryCards      GvaKind = "galleryCards"
	GvaPlainText         GvaKind = "plainText"
)

// GvaButtonTarget selects how a URL button opens.
const (
	GvaTargetSelf  = "self"
	GvaTargetModal = "modal"
)

// GvaButton is one tappable virtual-assistant button. URL buttons open a
// link; value buttons send their value back as a visitor message.
type GvaButton struct {
	Text   string `json:"text"`
	Value  string `json:"value,omitempty"`
	URL    string `json:"url,omitempty"`
	Target string `json:"target,omitempty"`
}

// GvaGalleryCard is one card in a gallery element.
type GvaGalleryCard struct {
	Title    string      `json:"title"`
	Subtitle string      `json:"subtitle,omitempty"`
	ImageURL string      `json:"imageUrl,omitempty"`
	Buttons  []GvaButton `json:"buttons,omitempty"`
}

// Gva is the decoded virtual-assistant payload of a message.
type Gva struct {
	Kind    GvaKind          `json:"type"`
	Content string           `json:"content,omitempty"`
	Buttons []GvaButton      `json:"options,omitempty"`
	Cards   []GvaGalleryCard `json:"galleryCards,omitempty"`
}

// gvaEnvelope is the metadata wrapper the backend nests GVA payloads in.
type gvaEnvelope struct {
	Gva *Gva `json:"glia_virtual_assistant"`
}

// gvaFromMessage decodes the virtual-assistant payload carried in message
// metadata, if any.
func gvaFromMessage(msg coresdk.ChatMessage) (Gva, bool) {
	if len(msg.Metadata) == 0 {
		return Gva{}, false
	}
	var env gvaEnvelope
	if err := json.Unmarshal(msg.Metadata, &env); err != nil || env.Gva == nil {
		return Gva{}, false
	}
	if env.Gva.Kind == "" {
		env.Gva.Kind = GvaPlainText
	}
	return *env.Gva, true
}
