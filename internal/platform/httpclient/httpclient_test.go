package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON_SendsHeadersAndDecodes(t *testing.T) {
	var gotKey, gotCT string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		gotCT = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"queued"}`))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL + "/", Headers: map[string]string{"X-Api-Key": "secret", "": "ignored"}})
	require.NoError(t, err)

	var out struct {
		Status string `json:"status"`
	}
	require.NoError(t, c.DoJSON(context.Background(), http.MethodPost, "hooks", map[string]string{"a": "b"}, &out))

	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, "b", gotBody["a"])
	assert.Equal(t, "queued", out.Status)
}

func TestDoJSON_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := New(Config{})
	require.NoError(t, err)

	err = c.DoJSON(context.Background(), http.MethodPost, srv.URL, nil, nil)
	require.Error(t, err)

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusServiceUnavailable, he.StatusCode)
	assert.Equal(t, "busy", he.Body)
	assert.True(t, he.Temporary())
	assert.Equal(t, http.StatusServiceUnavailable, StatusCode(err))
}

func TestDoJSON_RelativeWithoutBase(t *testing.T) {
	c, err := New(Config{})
	require.NoError(t, err)
	assert.Error(t, c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil))
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "::nope"})
	assert.Error(t, err)
}
