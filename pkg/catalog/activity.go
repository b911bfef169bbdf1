package catalog

import (
	// Packages
	schema "github.com/mutablelogic/go-dms/pkg/schema"
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Activity returns activity entries matching the request, newest first.
// Count is the number of matches before offset and limit are applied.
func (c *Catalog) Activity(req schema.ActivityListRequest) *schema.ActivityListResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var matches []schema.Activity
	for i := len(c.activity) - 1; i >= 0; i-- {
		a := c.activity[i]
		switch {
		case req.Document != "" && a.Document != req.Document:
			continue
		case req.Node != "" && a.Node != req.Node:
			continue
		case req.User != "" && a.User != req.User:
			continue
		case req.Action != "" && a.Action != req.Action:
			continue
		}
		matches = append(matches, a)
	}

	response := &schema.ActivityListResponse{Count: len(matches)}
	if req.Limit > 0 {
		response.Body = paginate(matches, req.Offset, req.Limit)
	}
	return response
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// log appends an entry to the activity log. The catalog must be locked.
func (c *Catalog) log(a schema.Activity) {
	c.seq++
	a.ID = c.seq
	a.Time = c.now()
	c.activity = append(c.activity, a)
	c.trim()
	if c.listener != nil {
		c.listener(a)
	}
}

// trim drops the oldest entries beyond capacity
func (c *Catalog) trim() {
	if n := len(c.activity) - c.capacity; n > 0 {
		c.activity = append([]schema.Activity(nil), c.activity[n:]...)
	}
}
