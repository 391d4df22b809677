package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxDocumentSize caps how much of a holiday page is read.
const maxDocumentSize = 8 << 20

// HolidayPage fetches the holiday listing page as text.
type HolidayPage struct {
	url    string
	client *http.Client
}

// NewHolidayPage creates a holiday source for pageURL. A nil client uses
// http.DefaultClient.
func NewHolidayPage(pageURL string, client *http.Client) *HolidayPage {
	if client == nil {
		client = http.DefaultClient
	}
	return &HolidayPage{url: pageURL, client: client}
}

// FetchHolidays returns the page body.
func (h *HolidayPage) FetchHolidays(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return "", fmt.Errorf("build holiday request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("holiday request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("holiday request returned %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return "", fmt.Errorf("read holiday response: %w", err)
	}
	return string(body), nil
}
