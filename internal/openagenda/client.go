// Package openagenda fetches Paris cultural events from the
// Opendatasoft export of the public OpenAgenda dataset.
package openagenda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/puls-events/events-rag/internal/events"
)

const (
	// DefaultBaseURL is the Opendatasoft Explore API endpoint for the
	// public OpenAgenda events dataset.
	DefaultBaseURL = "https://public.opendatasoft.com/api/explore/v2.1/catalog/datasets/evenements-publics-openagenda/records"

	// DefaultPageSize is the number of records fetched per request.
	// The Explore API caps limit at 100.
	DefaultPageSize = 100

	// noDescription replaces events published without any description.
	noDescription = "Pas de description disponible"
)

// record mirrors the fields of one API result we consume.
type record struct {
	UID             string `json:"uid"`
	Title           string `json:"title_fr"`
	Description     string `json:"description_fr"`
	LongDescription string `json:"longdescription_fr"`
	Conditions      string `json:"conditions_fr"`
	LocationName    string `json:"location_name"`
	LocationAddress string `json:"location_address"`
	FirstDate       string `json:"firstdate_begin"`
	Keywords        any    `json:"keywords_fr"`
}

type recordsPage struct {
	TotalCount int      `json:"total_count"`
	Results    []record `json:"results"`
}

// Client fetches events page by page.
type Client struct {
	baseURL  string
	pageSize int
	http     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates an OpenAgenda client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		pageSize: DefaultPageSize,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchParisEvents fetches up to limit upcoming events located in
// Paris, starting from the given date (YYYY-MM-DD). Results are paged
// through with offsets until limit is reached or the dataset is
// exhausted.
func (c *Client) FetchParisEvents(ctx context.Context, from string, limit int) ([]events.Event, error) {
	where := fmt.Sprintf(`location_city:"Paris" AND firstdate_begin >= date'%s'`, from)

	var out []events.Event
	for offset := 0; len(out) < limit; offset += c.pageSize {
		pageLimit := min(c.pageSize, limit-len(out))

		page, err := c.fetchPage(ctx, where, pageLimit, offset)
		if err != nil {
			return nil, fmt.Errorf("fetch page at offset %d: %w", offset, err)
		}
		if len(page.Results) == 0 {
			break
		}

		for _, rec := range page.Results {
			out = append(out, toEvent(rec))
		}
		if offset+len(page.Results) >= page.TotalCount {
			break
		}
	}
	return out, nil
}

// fetchPage requests one page, retrying with exponential backoff on
// rate limiting and server errors.
func (c *Client) fetchPage(ctx context.Context, where string, limit, offset int) (*recordsPage, error) {
	params := url.Values{}
	params.Set("where", where)
	params.Set("order_by", "firstdate_begin")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	reqURL := c.baseURL + "?" + params.Encode()

	var page recordsPage
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("openagenda: status %d", resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("openagenda: status %d: %s", resp.StatusCode, body))
		}

		if err := json.Unmarshal(body, &page); err != nil {
			return backoff.Permanent(fmt.Errorf("parse response: %w", err))
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return &page, nil
}

// toEvent maps an API record to the corpus event model. The indexed
// description merges the short description, the long description and
// the practical conditions, since any of the three may carry the only
// useful text.
func toEvent(rec record) events.Event {
	var parts []string
	for _, s := range []string{rec.Description, rec.LongDescription} {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	if strings.TrimSpace(rec.Conditions) != "" {
		parts = append(parts, "Conditions: "+rec.Conditions)
	}

	description := strings.Join(parts, "\n\n")
	if description == "" {
		description = noDescription
	}

	return events.Event{
		UID:             rec.UID,
		Title:           rec.Title,
		Description:     description,
		LocationName:    rec.LocationName,
		LocationAddress: rec.LocationAddress,
		FirstDate:       rec.FirstDate,
		Keywords:        joinKeywords(rec.Keywords),
	}
}

// joinKeywords flattens the keywords field, which the API returns
// either as a string or as a list of strings.
func joinKeywords(v any) string {
	switch kw := v.(type) {
	case string:
		return kw
	case []any:
		var parts []string
		for _, item := range kw {
			if s, ok := item.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}
