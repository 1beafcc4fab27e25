package coresdk

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// syncDispatch runs completions inline so tests stay single-threaded
// once the request goroutine finishes. done is closed-over per call so
// each request can be awaited independently.
func newTestClient(url string) (*RESTClient, chan struct{}) {
	done := make(chan struct{}, 8)
	c := NewRESTClient(url, "site-1", "tok-secret", func(fn func()) {
		fn()
		done <- struct{}{}
	})
	return c, done
}

func TestFetchChatHistory_Success(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotAuth   string
		gotSite   string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotSite = r.Header.Get("X-Site-ID")
		_, _ = w.Write([]byte(`{"messages":[{"id":"m1","content":"hello","sender":"operator"},{"id":"m2","content":"hi","sender":"visitor"}]}`))
	}))
	defer srv.Close()

	c, done := newTestClient(srv.URL)

	var (
		gotMessages []ChatMessage
		gotErr      error
	)
	c.FetchChatHistory(func(msgs []ChatMessage, err error) {
		gotMessages = msgs
		gotErr = err
	})
	<-done

	if gotErr != nil {
		t.Fatalf("expected no error, got %v", gotErr)
	}
	if gotMethod != http.MethodGet {
		t.Errorf("expected GET method, got %s", gotMethod)
	}
	if gotPath != "/messaging/history" {
		t.Errorf("expected path /messaging/history, got %s", gotPath)
	}
	if gotAuth != "Bearer tok-secret" {
		t.Errorf("expected Authorization Bearer tok-secret, got %s", gotAuth)
	}
	if gotSite != "site-1" {
		t.Errorf("expected X-Site-ID site-1, got %s", gotSite)
	}
	if len(gotMessages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(gotMessages))
	}
	if gotMessages[0].ID != "m1" || gotMessages[0].Sender != SenderOperator {
		t.Errorf("unexpected first message: %+v", gotMessages[0])
	}
}

func TestSendSecureMessagePayload_Body(t *testing.T) {
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		gotBody, err = io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read request body: %v", err)
		}
		_, _ = w.Write([]byte(`{"id":"m9","content":"ping","sender":"visitor"}`))
	}))
	defer srv.Close()

	c, done := newTestClient(srv.URL)

	var gotMsg ChatMessage
	c.SendSecureMessagePayload(OutgoingPayload{MessageID: "local-1", Content: "ping"}, []string{"queue-1"}, func(msg ChatMessage, err error) {
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		gotMsg = msg
	})
	<-done

	var body map[string]any
	if err := json.Unmarshal(gotBody, &body); err != nil {
		t.Fatalf("failed to unmarshal request body: %v", err)
	}
	if body["message_id"] != "local-1" {
		t.Errorf("expected message_id local-1, got %v", body["message_id"])
	}
	if body["content"] != "ping" {
		t.Errorf("expected content ping, got %v", body["content"])
	}
	queues, ok := body["queue_ids"].([]any)
	if !ok || len(queues) != 1 || queues[0] != "queue-1" {
		t.Errorf("expected queue_ids [queue-1], got %v", body["queue_ids"])
	}
	if gotMsg.ID != "m9" {
		t.Errorf("expected confirmed message id m9, got %s", gotMsg.ID)
	}
}

func TestGetSecureUnreadMessageCount_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"unread_count":7}`))
	}))
	defer srv.Close()

	c, done := newTestClient(srv.URL)

	var gotCount int
	c.GetSecureUnreadMessageCount(func(count int, err error) {
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		gotCount = count
	})
	<-done

	if gotCount != 7 {
		t.Errorf("expected unread count 7, got %d", gotCount)
	}
}

func TestDo_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, done := newTestClient(srv.URL)

	var gotErr error
	c.SecureMarkMessagesAsRead(func(err error) {
		gotErr = err
	})
	<-done

	if gotErr == nil {
		t.Fatal("expected an error for 500 response, got nil")
	}
	if !strings.Contains(gotErr.Error(), "500") {
		t.Errorf("expected error to mention status 500, got: %v", gotErr)
	}
}

func TestFetchSiteConfigurations_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/site/configuration" {
			t.Errorf("expected path /site/configuration, got %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"site_id":"site-1","secure_conversations_enabled":true}`))
	}))
	defer srv.Close()

	c, done := newTestClient(srv.URL)

	var gotSite SiteConfiguration
	c.FetchSiteConfigurations(func(site SiteConfiguration, err error) {
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		gotSite = site
	})
	<-done

	if !gotSite.SecureConversationsEnabled {
		t.Error("expected secure conversations enabled")
	}
	if gotSite.SiteID != "site-1" {
		t.Errorf("expected site id site-1, got %s", gotSite.SiteID)
	}
}

func TestListQueues_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"queues":[{"id":"q1","name":"Support","status":"open","media":["text","messaging"]}]}`))
	}))
	defer srv.Close()

	c, done := newTestClient(srv.URL)

	var gotQueues []Queue
	c.ListQueues(func(queues []Queue, err error) {
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		gotQueues = queues
	})
	<-done

	if len(gotQueues) != 1 {
		t.Fatalf("expected 1 queue, got %d", len(gotQueues))
	}
	q := gotQueues[0]
	if q.Status != QueueOpen {
		t.Errorf("expected open queue, got %s", q.Status)
	}
	if !q.SupportsMedia(MediaMessaging) {
		t.Error("expected queue to support messaging media")
	}
	if q.SupportsMedia(MediaVideo) {
		t.Error("expected queue not to support video media")
	}
}
