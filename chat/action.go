package chat

// Action is one UI directive emitted to the presentation layer. The set
// is closed; presentation code applies each directive idempotently and
// must not infer state beyond what the directive carries.
type Action interface{ isAction() }

// ActionSink receives actions. A nil sink is legal and drops actions.
type ActionSink func(Action)

// AppendRows asks the view to insert Count rows at the end of a section.
type AppendRows struct {
	Section  int
	Count    int
	Animated bool
}

// RefreshRows asks the view to re-render the given rows in place.
type RefreshRows struct {
	Section int
	Rows    []int
}

// DeleteRows asks the view to drop the given rows (pre-removal indices).
type DeleteRows struct {
	Section  int
	Rows     []int
	Animated bool
}

// RefreshSection asks the view to reload one section wholesale.
type RefreshSection struct {
	Section  int
	Animated bool
}

// RefreshAll asks the view to reload every section.
type RefreshAll struct{}

// ScrollToBottom asks the view to scroll the transcript to its end.
type ScrollToBottom struct{ Animated bool }

// SetMessageText replaces the compose field contents.
type SetMessageText struct{ Text string }

// SendButtonHidden toggles the send button.
type SendButtonHidden struct{ Hidden bool }

// FileUploadListUpdated replaces the rendered upload list.
type FileUploadListUpdated struct{ Uploads []Upload }

// AddUpload appends one upload row to the rendered upload list.
type AddUpload struct{ Upload Upload }

// RemoveUpload drops one upload row from the rendered upload list.
type RemoveUpload struct{ LocalID string }

// QuickReplyPropsUpdated shows or clears the quick-reply button strip.
// Empty Buttons means hide the strip.
type QuickReplyPropsUpdated struct{ Buttons []GvaButton }

// SetChoiceCardInputModeEnabled locks or unlocks free-text input while a
// choice card awaits selection.
type SetChoiceCardInputModeEnabled struct{ Enabled bool }

// UpdateItemsUserImage updates the operator avatar shown on message rows.
type UpdateItemsUserImage struct{ URL string }

// PresentMediaPicker asks the view to open the attachment source sheet.
type PresentMediaPicker struct{}

// ConnectedToOperator announces the operator an engagement connected to.
type ConnectedToOperator struct {
	Name     string
	ImageURL string
}

// TransferringToOperator announces an in-progress transfer.
type TransferringToOperator struct{}

func (AppendRows) isAction()                    {}
func (RefreshRows) isAction()                   {}
func (DeleteRows) isAction()                    {}
func (RefreshSection) isAction()                {}
func (RefreshAll) isAction()                    {}
func (ScrollToBottom) isAction()                {}
func (SetMessageText) isAction()                {}
func (SendButtonHidden) isAction()              {}
func (FileUploadListUpdated) isAction()         {}
func (AddUpload) isAction()                     {}
func (RemoveUpload) isAction()                  {}
func (QuickReplyPropsUpdated) isAction()        {}
func (SetChoiceCardInputModeEnabled) isAction() {}
func (UpdateItemsUserImage) isAction()          {}
func (PresentMediaPicker) isAction()            {}
func (ConnectedToOperator) isAction()           {}
func (TransferringToOperator) isAction()        {}
