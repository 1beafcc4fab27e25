package chat

import "log/slog"

// activeCase discriminates the composite's two cases.
type activeCase int

const (
	caseTranscript activeCase = iota
	caseChat
)

// CompositeModel lets one presentation surface be driven by either a
// live chat model or a transcript model. Exactly one case is active at a
// time; every forwarded call reaches only the active case. The hosting
// controller can swap transcript for live chat in place without tearing
// the view down: rendered rows and scroll position survive the swap.
type CompositeModel struct {
	active     activeCase
	chat       *ChatModel
	transcript *TranscriptModel

	action   ActionSink
	delegate DelegateSink
}

// NewCompositeTranscript starts the composite on the transcript case.
func NewCompositeTranscript(t *TranscriptModel) *CompositeModel {
	c := &CompositeModel{active: caseTranscript, transcript: t}
	c.bind()
	return c
}

// NewCompositeChat starts the composite on the live chat case.
func NewCompositeChat(m *ChatModel) *CompositeModel {
	c := &CompositeModel{active: caseChat, chat: m}
	c.bind()
	return c
}

// SetActionSink binds the UI directive stream and rebinds the active case.
func (c *CompositeModel) SetActionSink(sink ActionSink) {
	c.action = sink
	c.bind()
}

// SetDelegate binds the delegate stream and rebinds the active case.
func (c *CompositeModel) SetDelegate(sink DelegateSink) {
	c.delegate = sink
	c.bind()
}

// bind wires the active case's callbacks through the composite's own
// sinks and detaches the inactive case so it can never emit.
func (c *CompositeModel) bind() {
	forwardAction := func(a Action) {
		if c.action != nil {
			c.action(a)
		}
	}
	forwardDelegate := func(e DelegateEvent) {
		if c.delegate != nil {
			c.delegate(e)
		}
	}

	switch c.active {
	case caseTranscript:
		c.transcript.SetActionSink(forwardAction)
		c.transcript.SetDelegate(forwardDelegate)
		if c.chat != nil {
			c.chat.SetActionSink(nil)
			c.chat.SetDelegate(nil)
		}
	case caseChat:
		c.chat.SetActionSink(forwardAction)
		c.chat.SetDelegate(forwardDelegate)
		if c.transcript != nil {
			c.transcript.SetActionSink(nil)
			c.transcript.SetDelegate(nil)
		}
	}
}

// Start starts the active case.
func (c *CompositeModel) Start() {
	switch c.active {
	case caseTranscript:
		c.transcript.Start()
	case caseChat:
		c.chat.Start()
	}
}

// Stop stops the active case.
func (c *CompositeModel) Stop() {
	switch c.active {
	case caseTranscript:
		c.transcript.Stop()
	case caseChat:
		c.chat.Stop()
	}
}

// Dispatch forwards one event to the active case only.
func (c *CompositeModel) Dispatch(e Event) {
	switch c.active {
	case caseTranscript:
		c.transcript.Dispatch(e)
	case caseChat:
		c.chat.Dispatch(e)
	}
}

// NumberOfSections forwards the section count projection.
func (c *CompositeModel) NumberOfSections() int {
	switch c.active {
	case caseChat:
		return c.chat.NumberOfSections()
	default:
		return c.transcript.NumberOfSections()
	}
}

// ItemCount forwards the row count projection.
func (c *CompositeModel) ItemCount(section int) int {
	switch c.active {
	case caseChat:
		return c.chat.ItemCount(section)
	default:
		return c.transcript.ItemCount(section)
	}
}

// ItemAt forwards the row projection.
func (c *CompositeModel) ItemAt(section, row int) Item {
	switch c.active {
	case caseChat:
		return c.chat.ItemAt(section, row)
	default:
		return c.transcript.ItemAt(section, row)
	}
}

// SwapAndBindChat upgrades the composite from transcript to live chat in
// place: the transcript case is stopped and detached, the chat case
// becomes active with all callbacks rebound, and the new model starts
// against the already-rendered view.
func (c *CompositeModel) SwapAndBindChat(m *ChatModel) {
	if c.active == caseChat {
		slog.Warn("chat: composite already driving live chat, ignoring swap")
		return
	}
	c.transcript.Stop()
	// The hosting view survives the swap; the new case inherits its
	// loaded and scroll state instead of waiting for a second view load.
	m.viewLoaded = c.transcript.viewLoaded
	m.scrolledToBottom = c.transcript.scrolledToBottom
	c.chat = m
	c.active = caseChat
	c.bind()
	c.chat.Start()
	slog.Info("chat: composite upgraded transcript to live chat")
}
