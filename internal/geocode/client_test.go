// server/internal/geocode/client_test.go
package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/reverse", r.URL.Path)
		require.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		require.NotEmpty(t, r.URL.Query().Get("lat"))
		require.NotEmpty(t, r.URL.Query().Get("lon"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"display_name":"Community Hall, Main Street"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	label, err := c.Reverse(context.Background(), 10.5, 76.2)
	require.NoError(t, err)
	require.Equal(t, "Community Hall, Main Street", label)
}

func TestReverseUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Reverse(context.Background(), 10.5, 76.2)
	require.Error(t, err)
}

func TestReverseUnconfigured(t *testing.T) {
	c := &Client{HTTP: http.DefaultClient}
	_, err := c.Reverse(context.Background(), 10.5, 76.2)
	require.Error(t, err)
}
