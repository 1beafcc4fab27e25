package chat

import (
	"github.com/MikeSquared-Agency/engage/alert"
	"github.com/MikeSquared-Agency/engage/coresdk"
)

// DelegateEvent is one occurrence the model surfaces to whoever hosts it
// (the coordinator or, through it, the host application).
type DelegateEvent interface{ isDelegateEvent() }

// DelegateSink receives delegate events. A nil sink drops them.
type DelegateSink func(DelegateEvent)

// ShowFile requests the file preview surface.
type ShowFile struct{ File coresdk.EngagementFile }

// OpenLink requests opening an external URL.
type OpenLink struct{ URL string }

// ShowAlert routes an alert request up to the priority gate.
type ShowAlert struct {
	Input  alert.Input
	AsView bool
}

// PickMedia, TakeMedia, and PickFile request the host media pickers.
type PickMedia struct{}
type TakeMedia struct{}
type PickFile struct{}

// UpgradeToChatEngagement asks the coordinator to swap the transcript
// surface for a live chat model in place.
type UpgradeToChatEngagement struct{}

// Minimize asks the host to collapse the widget.
type Minimize struct{}

// Finished reports that the conversation surface is done and may be torn
// down.
type Finished struct{}

func (ShowFile) isDelegateEvent()                {}
func (OpenLink) isDelegateEvent()                {}
func (ShowAlert) isDelegateEvent()               {}
func (PickMedia) isDelegateEvent()               {}
func (TakeMedia) isDelegateEvent()               {}
func (PickFile) isDelegateEvent()                {}
func (UpgradeToChatEngagement) isDelegateEvent() {}
func (Minimize) isDelegateEvent()                {}
func (Finished) isDelegateEvent()                {}
