package engage

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/engage/alert"
	"github.com/MikeSquared-Agency/engage/coresdk"
	"github.com/prometheus/client_golang/prometheus"
)

// Config is the host-supplied session configuration.
type Config struct {
	// SiteID and APIToken identify the site against the backend.
	SiteID   string
	APIToken string

	// BaseURL and SocketURL locate the backend. Ignored when API is set.
	BaseURL   string
	SocketURL string

	// QueueIDs are the routing queues engagements and secure messages go to.
	QueueIDs []string

	// API overrides the built-in REST/socket adapters. Hosts embedding
	// their own transport, and tests, inject one here.
	API coresdk.API

	// AlertPresenter renders and tears down alerts. Nil drops alerts.
	AlertPresenter alert.Presenter
	// AlertStrings overrides the composed alert copy.
	AlertStrings *alert.Strings

	// MetricsRegisterer receives the session's instruments. Nil disables
	// instrumentation.
	MetricsRegisterer prometheus.Registerer

	CharacterLimit            int
	UploadLimit               int
	DeliveredStatusText       string
	FailedToDeliverStatusText string

	// MarkReadDelay is how long a loaded transcript stays on screen
	// before messages are marked read. Zero means the default.
	MarkReadDelay time.Duration
	// RestartWait blocks new engagements briefly after one ends.
	RestartWait time.Duration
	// HistoryTimeout bounds the combined history load.
	HistoryTimeout time.Duration

	LogLevel string
}

// validate reports the configuration error taxonomy for New.
func (c Config) validate() error {
	if c.SiteID == "" || c.APIToken == "" {
		return ErrSDKNotConfigured
	}
	if c.API == nil && c.BaseURL == "" {
		return ErrInvalidSiteConfiguration
	}
	return nil
}

// LoadConfig builds a Config from the environment with defaults. Hosts
// that configure programmatically can ignore this entirely.
func LoadConfig() Config {
	return Config{
		SiteID:         envStr("ENGAGE_SITE_ID", ""),
		APIToken:       envStr("ENGAGE_API_TOKEN", ""),
		BaseURL:        envStr("ENGAGE_BASE_URL", ""),
		SocketURL:      envStr("ENGAGE_SOCKET_URL", ""),
		QueueIDs:       envList("ENGAGE_QUEUE_IDS"),
		CharacterLimit: envInt("ENGAGE_CHAR_LIMIT", 10000),
		UploadLimit:    envInt("ENGAGE_UPLOAD_LIMIT", 25),
		MarkReadDelay:  time.Duration(envInt("ENGAGE_MARK_READ_DELAY_MS", 6000)) * time.Millisecond,
		RestartWait:    time.Duration(envInt("ENGAGE_RESTART_WAIT_MS", 0)) * time.Millisecond,
		HistoryTimeout: time.Duration(envInt("ENGAGE_HISTORY_TIMEOUT_MS", 0)) * time.Millisecond,
		LogLevel:       envStr("ENGAGE_LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
