package chat

import (
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/engage/alert"
	"github.com/MikeSquared-Agency/engage/coresdk"
	"github.com/MikeSquared-Agency/engage/section"
)

// CoreConfig carries the knobs shared by both conversation models.
type CoreConfig struct {
	// CharacterLimit caps composed message length. Zero means the
	// default of 10000.
	CharacterLimit int
	// UploadLimit caps the attachment list. Zero means the default of 25.
	UploadLimit int
	// DeliveredStatusText labels the single most recently delivered row.
	DeliveredStatusText string
	// FailedToDeliverStatusText labels rows whose send failed.
	FailedToDeliverStatusText string
}

const (
	defaultCharacterLimit = 10000
	defaultUploadLimit    = 25
)

func (c *CoreConfig) applyDefaults() {
	if c.CharacterLimit <= 0 {
		c.CharacterLimit = defaultCharacterLimit
	}
	if c.UploadLimit <= 0 {
		c.UploadLimit = defaultUploadLimit
	}
	if c.DeliveredStatusText == "" {
		c.DeliveredStatusText = "Delivered"
	}
	if c.FailedToDeliverStatusText == "" {
		c.FailedToDeliverStatusText = "Failed to deliver"
	}
}

// sendFunc dispatches one composed payload and completes exactly once.
type sendFunc func(coresdk.OutgoingPayload, func(coresdk.ChatMessage, error))

// conversationCore is the state shared by the transcript and live chat
// models: the four fixed sections, the per-id reconciliation log, the
// upload list, and the compose field.
//
// Not safe for concurrent use; all mutation happens on the session
// dispatch goroutine.
type conversationCore struct {
	cfg      CoreConfig
	sections [sectionCount]*section.Section[Item]
	received receivedMessages
	uploads  uploadList

	action   ActionSink
	delegate DelegateSink

	messageText      string
	viewLoaded       bool
	scrolledToBottom bool

	// invalidated makes every pending completion a no-op once the model
	// is torn down. Checked at each asynchronous resumption point.
	invalidated bool
}

func newConversationCore(cfg CoreConfig) conversationCore {
	cfg.applyDefaults()
	c := conversationCore{
		cfg:              cfg,
		received:         make(receivedMessages),
		uploads:          newUploadList(cfg.UploadLimit),
		scrolledToBottom: true,
	}
	for i := range c.sections {
		c.sections[i] = section.New[Item](i)
	}
	return c
}

// Invalidate detaches the model: pending completions become no-ops.
func (c *conversationCore) Invalidate() {
	c.invalidated = true
}

func (c *conversationCore) emit(a Action) {
	if c.action != nil {
		c.action(a)
	}
}

func (c *conversationCore) notifyDelegate(e DelegateEvent) {
	if c.delegate != nil {
		c.delegate(e)
	}
}

// NumberOfSections returns the fixed section count.
func (c *conversationCore) NumberOfSections() int {
	return sectionCount
}

// ItemCount returns the row count of one section.
func (c *conversationCore) ItemCount(sectionIndex int) int {
	return c.sections[sectionIndex].ItemCount()
}

// ItemAt returns the row at the given position.
func (c *conversationCore) ItemAt(sectionIndex, row int) Item {
	return c.sections[sectionIndex].Item(row)
}

func (c *conversationCore) historySection() *section.Section[Item] {
	return c.sections[SectionHistory]
}

func (c *conversationCore) pendingSection() *section.Section[Item] {
	return c.sections[SectionPending]
}

// receiveMessage runs the per-id reconciliation: first sighting renders,
// every later sighting for the same id merges into the existing row.
func (c *conversationCore) receiveMessage(src messageSource) {
	existing := c.received.sources(src.message.ID)
	if len(existing) == 0 {
		c.received.record(src)
		if src.outgoing != nil {
			// Confirmation of our own send: complete the pending row now
			// instead of waiting for a socket echo.
			c.completeDelivery(src.message, src.outgoing)
			return
		}
		switch src.message.Sender {
		case coresdk.SenderOperator, coresdk.SenderSystem, coresdk.SenderVirtualAssistant:
			if !c.viewLoaded {
				// No buffering: a row that cannot render now never will.
				slog.Debug("chat: dropping message, view not loaded", "message_id", src.message.ID)
				return
			}
			c.appendIncoming(itemForMessage(src.message))
			if src.message.Attachment != nil && src.message.Attachment.Kind == coresdk.AttachmentSingleChoice {
				c.emit(SetChoiceCardInputModeEnabled{Enabled: true})
			}
		}
		return
	}

	sources := c.received.record(src)
	message := bestMessage(sources, src.message)
	out := bestOutgoing(sources)
	if out == nil {
		synth := OutgoingMessage{
			ID:      message.ID,
			Content: message.Content,
			Files:   c.uploads.succeededFiles(),
		}
		out = &synth
	}
	c.completeDelivery(message, out)
}

// completeDelivery replaces the matching pending row with a delivered
// visitor message and clears the delivered label from every other row,
// so at most one row carries it at a time.
func (c *conversationCore) completeDelivery(message coresdk.ChatMessage, out *OutgoingMessage) {
	pending := c.pendingSection()
	isSendRow := func(it Item) bool {
		return it.Kind == ItemOutgoingMessage || it.Kind == ItemVisitorMessage
	}
	matched := false
	for row := 0; row < pending.ItemCount(); row++ {
		item := pending.Item(row)
		if isSendRow(item) && (item.matchesID(message.ID) || item.matchesID(out.ID)) {
			matched = true
			break
		}
	}
	if !matched {
		// Nothing to complete: the row lives in history or was never
		// rendered. The sighting stays recorded for future merges.
		return
	}

	var refreshed []int
	for row := 0; row < pending.ItemCount(); row++ {
		item := pending.Item(row)
		switch {
		case isSendRow(item) && (item.matchesID(message.ID) || item.matchesID(out.ID)):
			pending.Replace(row, NewVisitorItem(message, c.cfg.DeliveredStatusText))
			refreshed = append(refreshed, row)
		case item.Status == c.cfg.DeliveredStatusText:
			cleared := item
			cleared.Status = ""
			pending.Replace(row, cleared)
			refreshed = append(refreshed, row)
		}
	}
	c.emit(RefreshRows{Section: SectionPending, Rows: refreshed})
}

// appendIncoming appends one operator/system row and auto-scrolls when
// the viewer already sat at the bottom before the append.
func (c *conversationCore) appendIncoming(item Item) {
	wasBottom := c.scrolledToBottom
	pending := c.pendingSection()
	appendedRow := pending.Append(item)
	changed := c.updateAvatarVisibility(pending)

	c.emit(AppendRows{Section: SectionPending, Count: 1, Animated: true})
	var refresh []int
	for _, row := range changed {
		if row != appendedRow {
			refresh = append(refresh, row)
		}
	}
	if len(refresh) > 0 {
		c.emit(RefreshRows{Section: SectionPending, Rows: refresh})
	}
	if wasBottom {
		c.emit(ScrollToBottom{Animated: true})
	}
}

// updateAvatarVisibility recomputes operator avatar grouping: only the
// last message of a consecutive operator run shows the image. Returns
// the rows whose visibility changed.
func (c *conversationCore) updateAvatarVisibility(s *section.Section[Item]) []int {
	var changed []int
	for row := 0; row < s.ItemCount(); row++ {
		item := s.Item(row)
		if !item.isOperatorKind() {
			continue
		}
		next, ok := s.ItemAfter(row)
		shows := !ok || !next.isOperatorKind()
		if item.ShowsImage != shows {
			item.ShowsImage = shows
			s.Replace(row, item)
			changed = append(changed, row)
		}
	}
	return changed
}

// validateMessage is the send gate: a pure predicate over compose state
// whose every evaluation also toggles send-button visibility.
func (c *conversationCore) validateMessage() bool {
	uploadsReady := c.uploads.countIn(UploadFailed) == 0 &&
		c.uploads.countIn(UploadInProgress) == 0 &&
		!c.uploads.atLimit()
	trimmed := strings.TrimSpace(c.messageText)
	hasContent := (trimmed != "" && len([]rune(trimmed)) <= c.cfg.CharacterLimit) ||
		c.uploads.countIn(UploadSucceeded) > 0

	ok := uploadsReady && hasContent
	c.emit(SendButtonHidden{Hidden: !ok})
	return ok
}

// sendComposed appends an outgoing row for the current compose state,
// clears the inputs immediately so the message cannot be submitted
// twice, and dispatches the send.
func (c *conversationCore) sendComposed(send sendFunc) {
	if !c.validateMessage() {
		return
	}

	out := NewOutgoingMessage(strings.TrimSpace(c.messageText), c.uploads.succeededFiles())
	c.pendingSection().Append(NewOutgoingItem(out))
	c.emit(AppendRows{Section: SectionPending, Count: 1, Animated: true})

	c.messageText = ""
	c.emit(SetMessageText{})
	c.uploads.clear()
	c.emit(FileUploadListUpdated{})
	c.validateMessage()
	c.emit(ScrollToBottom{Animated: true})

	c.deliver(out, out.Payload(), send)
}

// deliver dispatches one payload. On success the confirmation flows
// through reconciliation; on failure the row is labelled failed and kept
// so the visitor can retry in place.
func (c *conversationCore) deliver(out OutgoingMessage, payload coresdk.OutgoingPayload, send sendFunc) {
	send(payload, func(msg coresdk.ChatMessage, err error) {
		if c.invalidated {
			return
		}
		if err != nil {
			slog.Warn("chat: message send failed", "outgoing_id", out.ID, "error", err)
			c.markFailedToDeliver(out.ID)
			c.notifyDelegate(ShowAlert{Input: alert.Input{Kind: alert.KindMessageSendFailed}})
			return
		}
		c.receiveMessage(apiSource(msg, &out))
	})
}

// markFailedToDeliver refreshes (never re-appends) the matching pending
// row with the failure label.
func (c *conversationCore) markFailedToDeliver(outgoingID string) {
	pending := c.pendingSection()
	for row := 0; row < pending.ItemCount(); row++ {
		item := pending.Item(row)
		if item.Kind != ItemOutgoingMessage || !item.matchesID(outgoingID) {
			continue
		}
		failed := *item.Outgoing
		failed.Error = c.cfg.FailedToDeliverStatusText
		pending.Replace(row, NewOutgoingItem(failed))
		c.emit(RefreshRows{Section: SectionPending, Rows: []int{row}})
		return
	}
}

// retryMessage removes the failed row, re-appends it as a fresh pending
// row at the end, and resends.
func (c *conversationCore) retryMessage(outgoingID string, send sendFunc) {
	pending := c.pendingSection()
	for row := 0; row < pending.ItemCount(); row++ {
		item := pending.Item(row)
		if item.Kind != ItemOutgoingMessage || !item.matchesID(outgoingID) || item.Outgoing.Error == "" {
			continue
		}
		fresh := *item.Outgoing
		fresh.Error = ""

		pending.Remove(row)
		c.emit(DeleteRows{Section: SectionPending, Rows: []int{row}, Animated: true})
		pending.Append(NewOutgoingItem(fresh))
		c.emit(AppendRows{Section: SectionPending, Count: 1, Animated: true})
		c.emit(ScrollToBottom{Animated: true})

		c.deliver(fresh, fresh.Payload(), send)
		return
	}
}

// selectChoiceOption answers a choice card and unlocks free-text input
// once the response is confirmed.
func (c *conversationCore) selectChoiceOption(ev ChoiceOptionSelected, send sendFunc) {
	out := NewOutgoingMessage(ev.Option.Text, nil)
	payload := out.Payload()
	payload.Attachment = &coresdk.Attachment{
		Kind:           coresdk.AttachmentSingleChoiceResponse,
		SelectedOption: ev.Option.Value,
	}
	send(payload, func(msg coresdk.ChatMessage, err error) {
		if c.invalidated {
			return
		}
		if err != nil {
			slog.Warn("chat: choice response failed", "message_id", ev.MessageID, "error", err)
			c.notifyDelegate(ShowAlert{Input: alert.Input{Kind: alert.KindUnexpectedError}})
			return
		}
		c.receiveMessage(apiSource(msg, &out))
		c.emit(SetChoiceCardInputModeEnabled{Enabled: false})
	})
}

// tapGvaButton activates a virtual-assistant button. URL buttons open
// the link, minimizing the widget for self-target URLs; value buttons
// echo their value back as a visitor message.
func (c *conversationCore) tapGvaButton(btn GvaButton, send sendFunc) {
	if btn.URL != "" {
		c.notifyDelegate(OpenLink{URL: btn.URL})
		if btn.Target == GvaTargetSelf {
			c.notifyDelegate(Minimize{})
		}
		return
	}

	content := btn.Value
	if content == "" {
		content = btn.Text
	}
	out := NewOutgoingMessage(content, nil)
	c.pendingSection().Append(NewOutgoingItem(out))
	c.emit(AppendRows{Section: SectionPending, Count: 1, Animated: true})
	c.emit(ScrollToBottom{Animated: true})
	c.deliver(out, out.Payload(), send)
}

// handleCommonEvent processes the events both models share. Reports
// whether the event was consumed.
func (c *conversationCore) handleCommonEvent(e Event, send sendFunc) bool {
	switch ev := e.(type) {
	case ViewDidLoad:
		c.viewLoaded = true
		c.validateMessage()
	case MessageTextChanged:
		c.messageText = ev.Text
		c.validateMessage()
	case SendTapped:
		c.sendComposed(send)
	case RetryMessageTapped:
		c.retryMessage(ev.OutgoingID, send)
	case PickMediaTapped:
		c.emit(PresentMediaPicker{})
		c.notifyDelegate(PickMedia{})
	case UploadAdded:
		if c.uploads.atLimit() {
			return true
		}
		c.uploads.add(ev.Upload)
		c.emit(AddUpload{Upload: ev.Upload})
		c.emit(FileUploadListUpdated{Uploads: c.uploads.all()})
		c.validateMessage()
	case UploadStateChanged:
		if c.uploads.update(ev.LocalID, ev.State, ev.Progress, ev.File) {
			c.emit(FileUploadListUpdated{Uploads: c.uploads.all()})
			c.validateMessage()
		}
	case RemoveUploadTapped:
		if c.uploads.remove(ev.LocalID) {
			c.emit(RemoveUpload{LocalID: ev.LocalID})
			c.emit(FileUploadListUpdated{Uploads: c.uploads.all()})
			c.validateMessage()
		}
	case FileTapped:
		c.notifyDelegate(ShowFile{File: ev.File})
	case ChoiceOptionSelected:
		c.selectChoiceOption(ev, send)
	case GvaButtonTapped:
		c.tapGvaButton(ev.Button, send)
	case ScrolledToBottomChanged:
		c.scrolledToBottom = ev.IsBottom
	default:
		return false
	}
	return true
}
