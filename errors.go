package engage

import (
	"errors"

	"github.com/MikeSquared-Agency/engage/coordinator"
)

// Configuration errors: fatal to the requested operation, returned
// synchronously before any state mutation.
var (
	ErrSDKNotConfigured         = errors.New("sdk is not configured")
	ErrInvalidSiteConfiguration = errors.New("invalid site configuration")
)

// Concurrency-state errors: returned synchronously to prevent a second
// concurrent engagement; recoverable by redirecting (resume, end-first).
var (
	ErrEngagementExists               = coordinator.ErrEngagementExists
	ErrEngagementNotExist             = coordinator.ErrEngagementNotExist
	ErrRestartPending                 = coordinator.ErrRestartPending
	ErrCallVisualizerEngagementExists = errors.New("call visualizer engagement exists")
)
