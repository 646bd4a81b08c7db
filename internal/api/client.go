package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"livechat/pkg/exception"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/yanun0323/errors"
)

const (
	DefaultTimeout = 15 * time.Second
	maxErrorBody   = 4 << 10
)

// Client calls the chat REST API. It is stateless and never retries.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// NewClient creates a Client for baseURL, e.g. http://localhost:8000/api.
// A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil, exception.ErrAPIEmptyBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.Wrap(exception.ErrInvalidArgument, err.Error())
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, client: httpClient, timeout: DefaultTimeout}, nil
}

// Login signs in with a username and returns the assigned user id.
func (c *Client) Login(ctx context.Context, username string) (LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/login", loginRequest{Username: username}, &resp); err != nil {
		return resp, err
	}
	if !resp.Success {
		return resp, errors.Wrap(exception.ErrAPIUnsuccessful, resp.Message)
	}
	return resp, nil
}

// ListChats returns the chats visible to userID.
func (c *Client) ListChats(ctx context.Context, userID string) (ChatsResponse, error) {
	var resp ChatsResponse
	path := "/chats?" + url.Values{"userId": {userID}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return resp, err
	}
	if !resp.Success {
		return resp, errors.Wrap(exception.ErrAPIUnsuccessful, "list chats")
	}
	return resp, nil
}

// GetChatDetail returns a chat with its messages. userID is optional and
// lets the server flag own messages.
func (c *Client) GetChatDetail(ctx context.Context, chatID, userID string) (ChatDetailResponse, error) {
	var resp ChatDetailResponse
	path := "/chats/" + url.PathEscape(chatID)
	if userID != "" {
		path += "?" + url.Values{"userId": {userID}}.Encode()
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return resp, err
	}
	if !resp.Success {
		return resp, errors.Wrapf(exception.ErrAPIUnsuccessful, "chat %s", chatID)
	}
	return resp, nil
}

// SendMessage posts text to chatID on behalf of senderID.
func (c *Client) SendMessage(ctx context.Context, chatID, text, senderID string) (SendMessageResponse, error) {
	var resp SendMessageResponse
	path := "/chats/" + url.PathEscape(chatID) + "/messages"
	body := sendMessageRequest{Text: text, SenderID: senderID}
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return resp, err
	}
	if !resp.Success {
		return resp, errors.Wrapf(exception.ErrAPIUnsuccessful, "send to chat %s", chatID)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := sonic.ConfigStd.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request")
		}
		reader = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	r, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(exception.ErrInvalidArgument, err.Error())
	}
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/json")
	r.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.client.Do(r)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp, method, path)
	}
	if err := sonic.ConfigStd.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s %s", method, path)
	}
	return nil
}

func statusError(resp *http.Response, method, path string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := strings.TrimSpace(string(raw))
	var body errorBody
	if err := sonic.ConfigStd.Unmarshal(raw, &body); err == nil && body.Detail != nil {
		detail = fmt.Sprint(body.Detail)
	}
	msg := fmt.Sprintf("%s %s: status %d: %s", method, path, resp.StatusCode, detail)
	return errors.Wrap(exception.ErrAPIStatus, msg).With("status", resp.StatusCode)
}
