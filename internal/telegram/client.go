// Package telegram is a thin client for the Telegram Bot API: long-poll
// updates in, messages and documents out. The rest of the program consumes
// it through small interfaces defined at the call sites, so nothing above
// this package depends on the wire protocol.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const DefaultBaseURL = "https://api.telegram.org"

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client for the given bot token. baseURL is overridable
// for tests; pass DefaultBaseURL otherwise. pollTimeout is the long-poll
// window later passed to GetUpdates; the HTTP timeout is derived from it so
// the client never cuts off its own long poll, whatever the configuration.
func NewClient(baseURL, token string, pollTimeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: pollTimeout + 30*time.Second},
	}
}

func (c *Client) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// GetUpdates long-polls for inbound events starting at offset. The offset
// is a monotonically increasing cursor: passing lastUpdateID+1 acknowledges
// everything before it and prevents redelivery.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	q := url.Values{}
	q.Set("timeout", strconv.Itoa(int(timeout.Seconds())))
	if offset != 0 {
		q.Set("offset", strconv.FormatInt(offset, 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("getUpdates")+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getUpdates: %w", err)
	}
	defer resp.Body.Close()

	var env apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("getUpdates decode: %w", err)
	}
	if !env.OK {
		return nil, fmt.Errorf("getUpdates: %s", env.Description)
	}

	var updates []Update
	if err := json.Unmarshal(env.Result, &updates); err != nil {
		return nil, fmt.Errorf("getUpdates result: %w", err)
	}
	return updates, nil
}

// SendText sends an HTML-formatted text message, optionally with a reply or
// inline keyboard.
func (c *Client) SendText(ctx context.Context, chatID int64, text string, markup *ReplyMarkup) error {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("text", text)
	form.Set("parse_mode", "HTML")
	if markup != nil {
		b, err := json.Marshal(markup)
		if err != nil {
			return err
		}
		form.Set("reply_markup", string(b))
	}
	return c.postForm(ctx, "sendMessage", form)
}

// SendDocument uploads content as a document with the given file name and
// caption.
func (c *Client) SendDocument(ctx context.Context, chatID int64, name string, content []byte, caption string) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if err := w.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return err
	}
	if caption != "" {
		if err := w.WriteField("caption", caption); err != nil {
			return err
		}
	}
	part, err := w.CreateFormFile("document", name)
	if err != nil {
		return err
	}
	if _, err := part.Write(content); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("sendDocument"), &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req, "sendDocument")
}

// AnswerCallback acknowledges an inline-button press, optionally with a
// short notification text.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	form := url.Values{}
	form.Set("callback_query_id", callbackID)
	if text != "" {
		form.Set("text", text)
	}
	return c.postForm(ctx, "answerCallbackQuery", form)
}

func (c *Client) postForm(ctx context.Context, method string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method), bytes.NewBufferString(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, method)
}

func (c *Client) do(req *http.Request, method string) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	var env apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil {
		return fmt.Errorf("%s decode: %w", method, err)
	}
	if !env.OK {
		return fmt.Errorf("%s: %s", method, env.Description)
	}
	return nil
}
