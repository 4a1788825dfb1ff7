package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultExpoPushURL = "https://exp.host/--/api/v2/push/send"

// ExpoClient sends push notifications through the Expo push API
type ExpoClient struct {
	pushURL string
	client  *http.Client
}

// NewExpoClient creates a new Expo push client
func NewExpoClient(pushURL string) *ExpoClient {
	if pushURL == "" {
		pushURL = defaultExpoPushURL
	}
	return &ExpoClient{
		pushURL: pushURL,
		client:  &http.Client{},
	}
}

// expoTicket is one per-message result in the Expo response
type expoTicket struct {
	Status  string `json:"status"` // "ok" or "error"
	Message string `json:"message,omitempty"`
}

// Send implements Sender
func (e *ExpoClient) Send(ctx context.Context, token string, n Notification) error {
	payload := map[string]interface{}{
		"to":        token,
		"sound":     "default",
		"title":     n.Title,
		"body":      n.Body,
		"data":      n.Data,
		"priority":  n.Priority,
		"channelId": n.ChannelID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.pushURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("expo push request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read push response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expo push API error (%d): %s", resp.StatusCode, string(respBody))
	}

	tickets, err := parseTickets(respBody)
	if err != nil {
		return err
	}
	for _, t := range tickets {
		if t.Status != "ok" {
			return fmt.Errorf("expo push rejected: %s", t.Message)
		}
	}
	return nil
}

// ticketExtractors are the known response shapes, tried in order: tickets
// nested under a data key (single or list), a bare list, or a bare object.
var ticketExtractors = []func(json.RawMessage) ([]expoTicket, bool){
	ticketsUnderData,
	ticketList,
	singleTicket,
}

func parseTickets(body []byte) ([]expoTicket, error) {
	for _, extract := range ticketExtractors {
		if tickets, ok := extract(body); ok {
			return tickets, nil
		}
	}
	return nil, fmt.Errorf("unrecognized expo push response: %s", string(body))
}

func ticketsUnderData(body json.RawMessage) ([]expoTicket, bool) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil || len(wrapper.Data) == 0 {
		return nil, false
	}
	if tickets, ok := ticketList(wrapper.Data); ok {
		return tickets, true
	}
	return singleTicket(wrapper.Data)
}

func ticketList(body json.RawMessage) ([]expoTicket, bool) {
	var tickets []expoTicket
	if err := json.Unmarshal(body, &tickets); err != nil {
		return nil, false
	}
	return tickets, true
}

func singleTicket(body json.RawMessage) ([]expoTicket, bool) {
	var ticket expoTicket
	if err := json.Unmarshal(body, &ticket); err != nil || ticket.Status == "" {
		return nil, false
	}
	return []expoTicket{ticket}, true
}
