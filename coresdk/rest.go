package coresdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DispatchFunc posts fn onto the session dispatch goroutine. The REST
// client performs requests on background goroutines and hops every
// completion through this function.
type DispatchFunc func(fn func())

// RESTClient implements the messaging side of API over the platform's
// HTTP endpoints. Socket observation is delegated to an attached
// SocketObserver so one RESTClient satisfies the whole API contract.
type RESTClient struct {
	baseURL  string
	siteID   string
	token    string
	client   *http.Client
	dispatch DispatchFunc
	socket   *SocketObserver
}

// NewRESTClient creates a client for the given site. The dispatch
// function must serialize completions onto the session goroutine.
func NewRESTClient(baseURL, siteID, token string, dispatch DispatchFunc) *RESTClient {
	return &RESTClient{
		baseURL:  baseURL,
		siteID:   siteID,
		token:    token,
		client:   &http.Client{Timeout: 10 * time.Second},
		dispatch: dispatch,
	}
}

// AttachSocket wires the live event stream used by Start/StopSocketObservation.
func (c *RESTClient) AttachSocket(s *SocketObserver) {
	c.socket = s
}

func (c *RESTClient) FetchChatHistory(complete func([]ChatMessage, error)) {
	go func() {
		var out struct {
			Messages []ChatMessage `json:"messages"`
		}
		err := c.do(http.MethodGet, "/messaging/history", nil, &out)
		c.dispatch(func() { complete(out.Messages, err) })
	}()
}

func (c *RESTClient) GetSecureUnreadMessageCount(complete func(int, error)) {
	go func() {
		var out struct {
			UnreadCount int `json:"unread_count"`
		}
		err := c.do(http.MethodGet, "/messaging/unread-count", nil, &out)
		c.dispatch(func() { complete(out.UnreadCount, err) })
	}()
}

func (c *RESTClient) SendSecureMessagePayload(payload OutgoingPayload, queueIDs []string, complete func(ChatMessage, error)) {
	go func() {
		in := struct {
			OutgoingPayload
			QueueIDs []string `json:"queue_ids"`
		}{OutgoingPayload: payload, QueueIDs: queueIDs}
		var out ChatMessage
		err := c.do(http.MethodPost, "/messaging/messages", in, &out)
		c.dispatch(func() { complete(out, err) })
	}()
}

func (c *RESTClient) SecureMarkMessagesAsRead(complete func(error)) {
	go func() {
		err := c.do(http.MethodPost, "/messaging/mark-read", struct{}{}, nil)
		c.dispatch(func() { complete(err) })
	}()
}

func (c *RESTClient) FetchSiteConfigurations(complete func(SiteConfiguration, error)) {
	go func() {
		var out SiteConfiguration
		err := c.do(http.MethodGet, "/site/configuration", nil, &out)
		c.dispatch(func() { complete(out, err) })
	}()
}

func (c *RESTClient) ListQueues(complete func([]Queue, error)) {
	go func() {
		var out struct {
			Queues []Queue `json:"queues"`
		}
		err := c.do(http.MethodGet, "/queues", nil, &out)
		c.dispatch(func() { complete(out.Queues, err) })
	}()
}

func (c *RESTClient) StartSocketObservation() {
	if c.socket == nil {
		slog.Warn("coresdk: socket observation requested with no observer attached")
		return
	}
	c.socket.Start()
}

func (c *RESTClient) StopSocketObservation() {
	if c.socket != nil {
		c.socket.Stop()
	}
}

// do performs one JSON request/response round trip.
func (c *RESTClient) do(method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Site-ID", c.siteID)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
