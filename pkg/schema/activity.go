package schema

import (
	"time"

	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Action is a user action recorded in the activity log.
type Action string

// Activity is one entry in the audit trail.
type Activity struct {
	ID       uint64    `json:"id"`
	Time     time.Time `json:"time"`
	User     string    `json:"user,omitempty"`
	Action   Action    `json:"action"`
	Document string    `json:"document,omitempty"`
	Node     string    `json:"node,omitempty"`
	Name     string    `json:"name,omitempty"`
	Detail   string    `json:"detail,omitempty"`
}

type ActivityListRequest struct {
	Document string `json:"document,omitempty"`
	Node     string `json:"node,omitempty"`
	User     string `json:"user,omitempty"`
	Action   Action `json:"action,omitempty"`
	Offset   int    `json:"offset,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type ActivityListResponse struct {
	Count int        `json:"count"`
	Body  []Activity `json:"body,omitempty"`
}

////////////////////////////////////////////////////////////////////////////////
// CONSTANTS

const (
	ActionCreate  Action = "create"
	ActionRename  Action = "rename"
	ActionMove    Action = "move"
	ActionDelete  Action = "delete"
	ActionRestore Action = "restore"
	ActionPurge   Action = "purge"
	ActionUpload  Action = "upload"
	ActionTag     Action = "tag"
	ActionUntag   Action = "untag"
	ActionShare   Action = "share"
	ActionUnshare Action = "unshare"
)

// ActivityEvent is the server-sent event name used when streaming activity.
const ActivityEvent = "activity"

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (a Activity) String() string {
	return types.Stringify(a)
}

func (r ActivityListRequest) String() string {
	return types.Stringify(r)
}

func (r ActivityListResponse) String() string {
	return types.Stringify(r)
}
