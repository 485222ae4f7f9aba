package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shepherdstable/pantry-cloud/internal/report"
)

// MonthUpdate is one frame from the live month report stream.
type MonthUpdate struct {
	State    string               `json:"state"`
	LastSync time.Time            `json:"last_sync"`
	Summary  *report.MonthSummary `json:"summary"`
}

// WatchMonth subscribes to the live month report stream. The first frame is
// the current snapshot; later frames follow data changes on the server. The
// returned channel closes when the context ends or the server drops the
// stream.
func (c *Client) WatchMonth(ctx context.Context, monthKey string) (<-chan MonthUpdate, error) {
	q := c.query()
	if monthKey != "" {
		q.Set("month", monthKey)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+pathWithQuery("/api/reports/stream", q), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		body, readErr := io.ReadAll(resp.Body)
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Printf("warning: closing response body: %v\n", cerr)
		}
		if readErr != nil {
			return nil, fmt.Errorf("reading response: %w", readErr)
		}
		return nil, decodeError(body, resp.StatusCode)
	}

	updates := make(chan MonthUpdate)
	go func() {
		defer close(updates)
		defer func() {
			if cerr := resp.Body.Close(); cerr != nil {
				fmt.Printf("warning: closing response body: %v\n", cerr)
			}
		}()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}

			var u MonthUpdate
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &u); err != nil {
				continue
			}

			select {
			case updates <- u:
			case <-ctx.Done():
				return
			}
		}
	}()

	return updates, nil
}
