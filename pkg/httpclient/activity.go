package httpclient

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	// Packages
	client "github.com/mutablelogic/go-client"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ListActivity returns activity log entries, newest first
func (c *Client) ListActivity(ctx context.Context, req schema.ActivityListRequest) (*schema.ActivityListResponse, error) {
	var response schema.ActivityListResponse
	if err := c.do(ctx, client.NewRequest(), &response,
		client.OptPath("activity"),
		client.OptQuery(activityQuery(req)),
	); err != nil {
		return nil, err
	}
	return &response, nil
}

// FollowActivity streams activity until the context is cancelled or fn
// returns an error. The most recent req.Limit entries are delivered first,
// oldest first.
func (c *Client) FollowActivity(ctx context.Context, req schema.ActivityListRequest, fn func(schema.Activity) error) error {
	u, err := url.Parse(c.endpoint + "/activity")
	if err != nil {
		return err
	}
	u.RawQuery = activityQuery(req).Encode()
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	r.Header.Set("Accept", types.ContentTypeTextStream)
	c.authorize(r)

	// The go-client timeout does not apply to the stream
	hc := *c.Client.Client
	hc.Timeout = 0
	resp, err := hc.Do(r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := responseError(resp); err != nil {
		return err
	}

	err = readEvents(resp.Body, func(event, data string) error {
		if event != schema.ActivityEvent {
			return nil
		}
		var a schema.Activity
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			return err
		}
		return fn(a)
	})
	if ctx.Err() != nil && (err == nil || errors.Is(err, ctx.Err()) || errors.Is(err, io.ErrUnexpectedEOF)) {
		return nil
	}
	return err
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func activityQuery(req schema.ActivityListRequest) url.Values {
	query := make(url.Values)
	setQuery(query, "document", req.Document)
	setQuery(query, "node", req.Node)
	setQuery(query, "user", req.User)
	setQuery(query, "action", string(req.Action))
	if req.Offset > 0 {
		query.Set("offset", strconv.Itoa(req.Offset))
	}
	if req.Limit > 0 {
		query.Set("limit", strconv.Itoa(req.Limit))
	}
	return query
}

// readEvents parses a server-sent event stream, calling fn for each event
// with a data field
func readEvents(r io.Reader, fn func(event, data string) error) error {
	var event string
	var data []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if len(data) > 0 {
				if err := fn(event, strings.Join(data, "\n")); err != nil {
					return err
				}
			}
			event, data = "", nil
		case strings.HasPrefix(line, ":"):
			// Comment
		default:
			field, value, _ := strings.Cut(line, ":")
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "event":
				event = value
			case "data":
				data = append(data, value)
			}
		}
	}
	return scanner.Err()
}

// responseError returns a typed error for a non-2xx response, using the
// reason from a JSON error body when present
func responseError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var reason struct {
		Reason string `json:"reason"`
	}
	if json.Unmarshal(body, &reason) == nil && reason.Reason != "" {
		return httpresponse.Err(resp.StatusCode).With(reason.Reason)
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return httpresponse.Err(resp.StatusCode).With(text)
	}
	return httpresponse.Err(resp.StatusCode)
}
