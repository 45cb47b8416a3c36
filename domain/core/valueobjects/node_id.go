package valueobjects

import (
	"encoding/json"
	"errors"
	"strings"
)

// NodeID is a value object identifying a vertex within one graph response.
// It is the source entity's key prefixed by the vertex kind so that keys from
// different entity families never collide.
type NodeID struct {
	kind string
	key  string
}

const nodeIDSeparator = ":"

// NewNodeID creates a NodeID from a kind and a source key
func NewNodeID(kind, key string) (NodeID, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return NodeID{}, errors.New("node kind cannot be empty")
	}
	if strings.Contains(kind, nodeIDSeparator) {
		return NodeID{}, errors.New("node kind cannot contain a separator")
	}
	if strings.TrimSpace(key) == "" {
		return NodeID{}, errors.New("node key cannot be empty")
	}
	return NodeID{kind: kind, key: key}, nil
}

// ParseNodeID parses the "<kind>:<key>" form produced by String
func ParseNodeID(s string) (NodeID, error) {
	kind, key, ok := strings.Cut(s, nodeIDSeparator)
	if !ok {
		return NodeID{}, errors.New("node ID must have the form kind:key")
	}
	return NewNodeID(kind, key)
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	if id.IsZero() {
		return ""
	}
	return id.kind + nodeIDSeparator + id.key
}

// Kind returns the vertex kind prefix
func (id NodeID) Kind() string {
	return id.kind
}

// Key returns the source entity key
func (id NodeID) Key() string {
	return id.key
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id.kind == other.kind && id.key == other.key
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id.kind == "" && id.key == ""
}

// MarshalJSON implements json.Marshaler
func (id NodeID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (id *NodeID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("NodeID must be a string")
	}
	parsed, err := ParseNodeID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
