// server/internal/notify/notifier_test.go
package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"food-rescue-api-server/internal/apperr"
	"food-rescue-api-server/internal/socket"
)

func TestDispatchPostsToWebhook(t *testing.T) {
	received := make(chan Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		received <- ev
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL, socket.NewHub())
	require.NoError(t, n.DonationClaimed(context.Background(), "USR-donor", map[string]string{"donationID": "DON-1"}))

	ev := <-received
	require.Equal(t, "donation_claimed", ev.Event)
	require.Equal(t, "USR-donor", ev.UserID)
}

func TestDispatchWithoutWebhookIsANoop(t *testing.T) {
	n := New("", socket.NewHub())
	require.NoError(t, n.NgoRecommended(context.Background(), "USR-ngo", nil))
}

func TestDispatchFailureIsDependencyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := New(srv.URL, nil)
	err := n.DonationClaimed(context.Background(), "USR-donor", nil)
	require.True(t, apperr.IsDependency(err))

	// Unreachable host, same classification.
	n = New("http://127.0.0.1:1/webhook", nil)
	err = n.DonationClaimed(context.Background(), "USR-donor", nil)
	require.True(t, apperr.IsDependency(err))
}
