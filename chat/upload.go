package chat

import "github.com/MikeSquared-Agency/engage/coresdk"

// UploadState is the lifecycle of one attachment upload.
type UploadState string

const (
	UploadInProgress UploadState = "in_progress"
	UploadSucceeded  UploadState = "succeeded"
	UploadFailed     UploadState = "failed"
)

// Upload is one attachment in the compose area's upload list.
type Upload struct {
	// LocalID identifies the upload before the backend assigns a file id.
	LocalID  string
	File     coresdk.EngagementFile
	State    UploadState
	Progress float64
}

// uploadList tracks the compose area's attachments and the send-gating
// counts validation needs.
type uploadList struct {
	uploads []Upload
	limit   int
}

func newUploadList(limit int) uploadList {
	return uploadList{limit: limit}
}

func (l *uploadList) all() []Upload {
	out := make([]Upload, len(l.uploads))
	copy(out, l.uploads)
	return out
}

func (l *uploadList) add(u Upload) {
	l.uploads = append(l.uploads, u)
}

func (l *uploadList) remove(localID string) bool {
	for i, u := range l.uploads {
		if u.LocalID == localID {
			l.uploads = append(l.uploads[:i], l.uploads[i+1:]...)
			return true
		}
	}
	return false
}

func (l *uploadList) update(localID string, state UploadState, progress float64, file coresdk.EngagementFile) bool {
	for i, u := range l.uploads {
		if u.LocalID == localID {
			l.uploads[i].State = state
			l.uploads[i].Progress = progress
			if file.ID != "" {
				l.uploads[i].File = file
			}
			return true
		}
	}
	return false
}

func (l *uploadList) clear() {
	l.uploads = nil
}

func (l *uploadList) count() int {
	return len(l.uploads)
}

func (l *uploadList) atLimit() bool {
	return l.limit > 0 && len(l.uploads) >= l.limit
}

func (l *uploadList) countIn(state UploadState) int {
	n := 0
	for _, u := range l.uploads {
		if u.State == state {
			n++
		}
	}
	return n
}

// succeededFiles returns the files ready to attach to a send.
func (l *uploadList) succeededFiles() []coresdk.EngagementFile {
	var files []coresdk.EngagementFile
	for _, u := range l.uploads {
		if u.State == UploadSucceeded {
			files = append(files, u.File)
		}
	}
	return files
}
