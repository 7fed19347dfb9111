package lms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// collectPages walks the rel="next" chain of a paginated list response and
// returns every record across all pages, in page-then-within-page order.
// Bodies holding a bare sequence are flattened; a body holding a single
// object contributes one record.
//
// A non-OK initial response is fatal. A non-OK follow-up page stops the
// walk after its body has been taken, matching the server-reported-failure
// semantics of the upstream API.
func (c *Client) collectPages(ctx context.Context, first *resty.Response) ([]json.RawMessage, error) {
	if first.IsError() {
		return nil, errorFromResponse(first)
	}

	var records []json.RawMessage
	resp := first

	for {
		pageRecords, err := flattenBody(resp.Body())
		if err != nil {
			return nil, fmt.Errorf("decoding page from %s: %w", resp.Request.URL, err)
		}
		records = append(records, pageRecords...)

		if resp.IsError() {
			break
		}

		next := nextPageURL(resp.Header().Get("Link"))
		if len(next) == 0 {
			break
		}

		logrus.WithFields(logrus.Fields{
			"url": next,
		}).Debug("Fetching next page")

		// The next link carries the cursor in its query string; the
		// client-level headers (authorization included) are reused.
		nextResp, err := c.rest.R().SetContext(ctx).Get(next)
		if err != nil {
			return nil, fmt.Errorf("fetching next page %s: %w", next, err)
		}
		resp = nextResp
	}

	return records, nil
}

// flattenBody decodes a page body as either a sequence of records or a
// single record.
func flattenBody(body []byte) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) == 0 {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var records []json.RawMessage
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var record json.RawMessage
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, err
	}
	return []json.RawMessage{record}, nil
}

// nextPageURL extracts the rel="next" target from a Link header. Returns
// the empty string when the header has no next relation.
func nextPageURL(header string) string {
	for _, link := range strings.Split(header, ",") {
		sections := strings.Split(link, ";")
		if len(sections) < 2 {
			continue
		}
		target := strings.Trim(strings.TrimSpace(sections[0]), "<>")
		for _, param := range sections[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				return target
			}
		}
	}
	return ""
}

// errorFromResponse builds an error from a failed response, including the
// status code, reason phrase and any structured error messages the body
// carries.
func errorFromResponse(resp *resty.Response) error {
	detail := fmt.Sprintf("%d - %s", resp.StatusCode(), http.StatusText(resp.StatusCode()))

	var body struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil && len(body.Errors) > 0 {
		messages := make([]string, 0, len(body.Errors))
		for _, e := range body.Errors {
			messages = append(messages, e.Message)
		}
		detail += ": " + strings.Join(messages, "; ")
	}

	return fmt.Errorf("error %s for request %s", detail, resp.Request.URL)
}

// decodeRecords unmarshals aggregated raw records into typed values.
// Missing keys decode to zero values; they are not an error.
func decodeRecords[T any](records []json.RawMessage) ([]T, error) {
	decoded := make([]T, 0, len(records))
	for _, record := range records {
		var value T
		if err := json.Unmarshal(record, &value); err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}
		decoded = append(decoded, value)
	}
	return decoded, nil
}
