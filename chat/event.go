package chat

import "github.com/MikeSquared-Agency/engage/coresdk"

// Event is one inbound occurrence from the presentation layer. Each model
// consumes events through a single Dispatch method so behavior is
// deterministic and replayable in tests.
type Event interface{ isEvent() }

// ViewDidLoad reports that the hosting view finished loading. Operator
// and system messages arriving before this are dropped, not buffered.
type ViewDidLoad struct{}

// MessageTextChanged carries the current compose field contents.
type MessageTextChanged struct{ Text string }

// SendTapped requests sending the composed message.
type SendTapped struct{}

// RetryMessageTapped requests resending the failed message with the
// given local id.
type RetryMessageTapped struct{ OutgoingID string }

// PickMediaTapped requests the attachment source sheet.
type PickMediaTapped struct{}

// UploadAdded reports a host-initiated upload entering the list.
type UploadAdded struct{ Upload Upload }

// UploadStateChanged reports upload progress or a terminal state.
type UploadStateChanged struct {
	LocalID  string
	State    UploadState
	Progress float64
	File     coresdk.EngagementFile
}

// RemoveUploadTapped drops an upload from the list before sending.
type RemoveUploadTapped struct{ LocalID string }

// FileTapped requests opening a received file.
type FileTapped struct{ File coresdk.EngagementFile }

// ChoiceOptionSelected answers a choice card.
type ChoiceOptionSelected struct {
	MessageID string
	Option    coresdk.ChoiceOption
}

// GvaButtonTapped activates a virtual-assistant button.
type GvaButtonTapped struct{ Button GvaButton }

// ScrolledToBottomChanged tracks whether the viewer sits at the end of
// the transcript. Gates auto-scroll and read-receipt timing.
type ScrolledToBottomChanged struct{ IsBottom bool }

// LeaveConversationRequested opens the leave confirmation; mark-as-read
// scheduling pauses while it is pending.
type LeaveConversationRequested struct{}

// LeaveConversationResolved closes the leave confirmation.
type LeaveConversationResolved struct{ Confirmed bool }

func (ViewDidLoad) isEvent()                {}
func (MessageTextChanged) isEvent()         {}
func (SendTapped) isEvent()                 {}
func (RetryMessageTapped) isEvent()         {}
func (PickMediaTapped) isEvent()            {}
func (UploadAdded) isEvent()                {}
func (UploadStateChanged) isEvent()         {}
func (RemoveUploadTapped) isEvent()         {}
func (FileTapped) isEvent()                 {}
func (ChoiceOptionSelected) isEvent()       {}
func (GvaButtonTapped) isEvent()            {}
func (ScrolledToBottomChanged) isEvent()    {}
func (LeaveConversationRequested) isEvent() {}
func (LeaveConversationResolved) isEvent()  {}
