package treestore

import (
	"context"
	"encoding/json"
)

// ChangeEvent describes a mutation under a watched node.
type ChangeEvent struct {
	Path string          `json:"path"`
	Kind string          `json:"kind"` // "write", "append" or "delete"
	Key  string          `json:"key,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// TreeStore is a hierarchical key/value store addressed by slash-separated
// paths, with list nodes whose children carry store-generated keys and
// change notification on any node.
type TreeStore interface {
	// WriteNode stores value (JSON-marshalled) at path, replacing any
	// previous value.
	WriteNode(ctx context.Context, path string, value interface{}) error

	// AppendToList stores value as a new child of path under a
	// store-generated key and returns that key.
	AppendToList(ctx context.Context, path string, value interface{}) (string, error)

	// WriteChild stores value under an explicit child key of path and
	// indexes it like an appended entry.
	WriteChild(ctx context.Context, path, key string, value interface{}) error

	// ReadNode loads the value at path into dest. Returns ErrNodeNotFound
	// when nothing was ever written there.
	ReadNode(ctx context.Context, path string, dest interface{}) error

	// ListChildren returns the raw values of every child of path keyed by
	// child key. An empty map means the node has no children.
	ListChildren(ctx context.Context, path string) (map[string]json.RawMessage, error)

	// SubscribeToNode delivers a ChangeEvent for every mutation at or
	// below path. The returned cancel func stops delivery and may be
	// called at most once per subscription; it closes the channel.
	SubscribeToNode(ctx context.Context, path string) (<-chan ChangeEvent, func(), error)

	// DeleteNode removes path, its value and its child index. Deleting a
	// missing node is not an error.
	DeleteNode(ctx context.Context, path string) error
}
