package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/corpacademy/client-go/core"
)

// TokenSource supplies the bearer token for every call and is told about
// rejections. A 401 is the token store's problem, not the engines'.
type TokenSource interface {
	Token() string
	Invalidate()
}

// Client is the single HTTP gateway to the LMS backend. All repositories in
// this package share one instance.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  core.Logger
}

func NewClient(conf *core.Config, tokens TokenSource, logger core.Logger) *Client {
	return &Client{
		baseURL: conf.API.BaseURL,
		http:    &http.Client{Timeout: conf.API.Timeout},
		tokens:  tokens,
		logger:  logger,
	}
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// do performs one JSON round-trip. Non-2xx responses become RemoteErrors with
// the message extracted from the body; local state is never touched here.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "marshaling %s %s body", method, path)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = new(bytes.Buffer)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrapf(err, "building %s %s request", method, path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "reading %s %s response", method, path)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.Invalidate()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug(fmt.Sprintf("%s %s -> %d", method, path, resp.StatusCode))
		return core.NewRemoteError(resp.StatusCode, extractDetail(data))
	}

	if out != nil && len(data) > 0 {
		if err = json.Unmarshal(data, out); err != nil {
			return errors.Wrapf(err, "decoding %s %s response", method, path)
		}
	}
	return nil
}

// extractDetail pulls a human-readable message from an error body:
// the `detail` field if present, else the raw text, else "" (the caller
// falls back to "HTTP <status>").
func extractDetail(body []byte) string {
	var parsed struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Detail) > 0 {
		var s string
		if json.Unmarshal(parsed.Detail, &s) == nil {
			return s
		}
		return string(parsed.Detail)
	}
	var bare string
	if json.Unmarshal(body, &bare) == nil {
		return strings.TrimSpace(bare)
	}
	if !json.Valid(body) {
		// non-JSON body: surface the raw text as-is
		return string(bytes.TrimSpace(body))
	}
	return ""
}
