// server/internal/notify/notifier.go
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"food-rescue-api-server/internal/apperr"
	"food-rescue-api-server/internal/socket"
)

// Notifier dispatches outbound notifications: a JSON event POSTed to the
// email webhook plus a best-effort WebSocket push. Dispatch happens after the
// state transition has committed; a delivery failure is reported as a
// DependencyError and must never roll the transition back.
type Notifier struct {
	WebhookURL string
	Client     *http.Client
	Hub        *socket.Hub
}

func New(webhookURL string, hub *socket.Hub) *Notifier {
	return &Notifier{
		WebhookURL: webhookURL,
		Client:     &http.Client{Timeout: 5 * time.Second},
		Hub:        hub,
	}
}

// Event is the payload sent to the webhook and over the socket.
type Event struct {
	Event   string      `json:"event"`
	UserID  string      `json:"userID"`
	Payload interface{} `json:"payload,omitempty"`
}

// Dispatch sends the event to the webhook (when configured) and pushes it to
// the recipient's socket. The returned error, if any, is a DependencyError.
func (n *Notifier) Dispatch(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return apperr.Dependency("failed to encode notification", err)
	}

	if n.Hub != nil {
		if err := n.Hub.Send(ev.UserID, body); err != nil {
			log.Printf("WebSocket push to %s failed: %v", ev.UserID, err)
		}
	}

	if n.WebhookURL == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return apperr.Dependency("failed to build notification request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		log.Printf("Notification webhook failed for event %s: %v", ev.Event, err)
		return apperr.Dependency("notification delivery failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Printf("Notification webhook returned %d for event %s", resp.StatusCode, ev.Event)
		return apperr.Dependency("notification delivery failed", fmt.Errorf("webhook status %d", resp.StatusCode))
	}
	return nil
}

// DonationClaimed tells the donor their donation was picked up by a volunteer.
func (n *Notifier) DonationClaimed(ctx context.Context, donorID string, payload interface{}) error {
	return n.Dispatch(ctx, Event{Event: "donation_claimed", UserID: donorID, Payload: payload})
}

// NgoRecommended tells an NGO a volunteer recommended a donation to them.
func (n *Notifier) NgoRecommended(ctx context.Context, ngoID string, payload interface{}) error {
	return n.Dispatch(ctx, Event{Event: "ngo_recommended", UserID: ngoID, Payload: payload})
}
