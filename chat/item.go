package chat

import (
	"strings"

	"github.com/MikeSquared-Agency/engage/coresdk"
)

// Fixed section indices. Indices 2 and 3 are reserved for future surfaces
// and stay empty.
const (
	SectionHistory = 0
	SectionPending = 1
	sectionCount   = 4
)

// ItemKind discriminates transcript rows.
type ItemKind string

const (
	ItemVisitorMessage      ItemKind = "visitor_message"
	ItemOperatorMessage     ItemKind = "operator_message"
	ItemOutgoingMessage     ItemKind = "outgoing_message"
	ItemChoiceCard          ItemKind = "choice_card"
	ItemCustomCard          ItemKind = "custom_card"
	ItemGvaQuickReply       ItemKind = "gva_quick_reply"
	ItemGvaPersistentButton ItemKind = "gva_persistent_button"
	ItemGvaGallery          ItemKind = "gva_gallery"
	ItemGvaResponseText     ItemKind = "gva_response_text"
	ItemCallUpgrade         ItemKind = "call_upgrade"
	ItemSystemMessage       ItemKind = "system_message"
	ItemUnreadDivider       ItemKind = "unread_divider"
	ItemOperatorConnected   ItemKind = "operator_connected"
	ItemTransferring        ItemKind = "transferring"
)

// Item is one renderable transcript row. Identity is positional within a
// section; the wrapped message id is used only for reconciliation.
type Item struct {
	Kind     ItemKind
	Message  *coresdk.ChatMessage
	Outgoing *OutgoingMessage
	Gva      *Gva

	// Status is the delivery label on visitor rows ("Delivered", or the
	// failed-to-deliver text). Empty for rows with no label.
	Status string

	// ShowsImage and ImageURL control operator avatar grouping: only the
	// last message of a consecutive operator run shows the avatar.
	ShowsImage bool
	ImageURL   string

	// OperatorName is set on operator-connected and transferring banners.
	OperatorName string
}

// MessageID returns the id reconciliation matches this row by, or ""
// for rows that wrap no message.
func (it Item) MessageID() string {
	switch {
	case it.Outgoing != nil:
		return it.Outgoing.ID
	case it.Message != nil:
		return it.Message.ID
	default:
		return ""
	}
}

// matchesID reports whether the row wraps the given message id.
// Comparison is case-insensitive: REST and socket transports disagree on
// id casing.
func (it Item) matchesID(id string) bool {
	own := it.MessageID()
	return own != "" && strings.EqualFold(own, id)
}

// NewVisitorItem wraps a confirmed visitor message with a status label.
func NewVisitorItem(msg coresdk.ChatMessage, status string) Item {
	return Item{Kind: ItemVisitorMessage, Message: &msg, Status: status}
}

// NewOutgoingItem wraps an in-flight composed message.
func NewOutgoingItem(out OutgoingMessage) Item {
	return Item{Kind: ItemOutgoingMessage, Outgoing: &out}
}

// NewSystemItem wraps a system message.
func NewSystemItem(msg coresdk.ChatMessage) Item {
	return Item{Kind: ItemSystemMessage, Message: &msg}
}

// NewUnreadDivider creates the unread-messages separator row.
func NewUnreadDivider() Item {
	return Item{Kind: ItemUnreadDivider}
}

// NewOperatorConnectedItem creates the connected banner.
func NewOperatorConnectedItem(op coresdk.Operator) Item {
	return Item{Kind: ItemOperatorConnected, OperatorName: op.Name, ImageURL: op.ImageURL}
}

// NewTransferringItem creates the transferring banner.
func NewTransferringItem() Item {
	return Item{Kind: ItemTransferring}
}

// NewCallUpgradeItem creates the in-transcript call banner.
func NewCallUpgradeItem() Item {
	return Item{Kind: ItemCallUpgrade}
}

// itemForMessage classifies an incoming operator/system/assistant message
// into its row kind, decoding virtual-assistant metadata when present.
func itemForMessage(msg coresdk.ChatMessage) Item {
	if msg.Sender == coresdk.SenderSystem {
		return NewSystemItem(msg)
	}

	if gva, ok := gvaFromMessage(msg); ok {
		item := Item{Message: &msg, Gva: &gva}
		switch gva.Kind {
		case GvaQuickReplies:
			item.Kind = ItemGvaQuickReply
		case GvaPersistentButtons:
			item.Kind = ItemGvaPersistentButton
		case GvaGalleryCards:
			item.Kind = ItemGvaGallery
		default:
			item.Kind = ItemGvaResponseText
		}
		return item
	}

	if msg.Attachment != nil && msg.Attachment.Kind == coresdk.AttachmentSingleChoice {
		return Item{Kind: ItemChoiceCard, Message: &msg}
	}
	if len(msg.Metadata) > 0 {
		return Item{Kind: ItemCustomCard, Message: &msg}
	}

	item := Item{Kind: ItemOperatorMessage, Message: &msg}
	if msg.Operator != nil {
		item.ImageURL = msg.Operator.ImageURL
	}
	return item
}

// isOperatorKind reports whether the row renders as operator-authored
// content for avatar-grouping purposes.
func (it Item) isOperatorKind() bool {
	switch it.Kind {
	case ItemOperatorMessage, ItemChoiceCard, ItemCustomCard,
		ItemGvaQuickReply, ItemGvaPersistentButton, ItemGvaGallery, ItemGvaResponseText:
		return true
	}
	return false
}
