package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpacademy/client-go/core"
)

type staticTokens struct {
	token       string
	invalidated int
}

func (s *staticTokens) Token() string { return s.token }
func (s *staticTokens) Invalidate()  { s.invalidated++ }

func newTestClient(url string, tokens TokenSource) *Client {
	conf := &core.Config{}
	conf.API.BaseURL = url
	conf.API.Timeout = 5 * time.Second
	return NewClient(conf, tokens, core.NopLogger{})
}

func TestExtractDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "detail string", body: `{"detail": "Report not found"}`, want: "Report not found"},
		{name: "structured detail", body: `{"detail": [{"loc": ["body", "text_done"]}]}`, want: `[{"loc": ["body", "text_done"]}]`},
		{name: "bare json string", body: `"boom"`, want: "boom"},
		{name: "plain text body", body: "upstream proxy error", want: "upstream proxy error"},
		{name: "html error page", body: "<html>502</html>", want: "<html>502</html>"},
		{name: "json without detail", body: `{"error": "nope"}`, want: ""},
		{name: "empty body", body: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractDetail([]byte(tt.body)))
		})
	}
}

func TestClientDo_Headers(t *testing.T) {
	var gotAuth, gotReqID, gotContentType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"ok": true}`))
	}))
	defer ts.Close()

	client := newTestClient(ts.URL, &staticTokens{token: "tok-1"})
	var out struct {
		OK bool `json:"ok"`
	}
	err := client.do(context.Background(), http.MethodPost, "/standups", map[string]int{"day_number": 1}, &out)
	require.NoError(t, err)

	assert.True(t, out.OK)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.NotEmpty(t, gotReqID)
	assert.Equal(t, "application/json", gotContentType)
}

func TestClientDo_NoAuthHeaderWhenLoggedOut(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	client := newTestClient(ts.URL, &staticTokens{})
	require.NoError(t, client.do(context.Background(), http.MethodGet, "/courses/catalog", nil, nil))
	assert.Empty(t, gotAuth)
}

func TestClientDo_RemoteError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{name: "detail field", status: 400, body: `{"detail": "a comment is required for a revision"}`, wantDetail: "a comment is required for a revision"},
		{name: "plain text", status: 502, body: "bad gateway", wantDetail: "bad gateway"},
		{name: "no usable body", status: 500, body: `{}`, wantDetail: "HTTP 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			client := newTestClient(ts.URL, &staticTokens{token: "tok-1"})
			err := client.do(context.Background(), http.MethodGet, "/standups/my", nil, nil)
			require.Error(t, err)
			require.True(t, core.IsRemoteError(err))
			assert.Equal(t, tt.wantDetail, err.Error())
		})
	}
}

func TestClientDo_UnauthorizedInvalidatesToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Not authenticated"}`))
	}))
	defer ts.Close()

	tokens := &staticTokens{token: "tok-stale"}
	client := newTestClient(ts.URL, tokens)
	err := client.do(context.Background(), http.MethodGet, "/users/me", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 1, tokens.invalidated)
	assert.Equal(t, "Not authenticated", err.Error())
}

func TestClientLogin(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		w.Write([]byte(`{"access_token": "tok-new", "token_type": "bearer"}`))
	}))
	defer ts.Close()

	client := newTestClient(ts.URL, &staticTokens{})
	token, err := client.Login(context.Background(), "employee@test.test", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-new", token)
}
