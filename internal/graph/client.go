// Package graph provides the Bolt client used by the graph-backed transaction
// store, plus an in-memory double for tests.
package graph

import (
	"context"
	"errors"
	"fmt"
)

// Client is the narrow contract the graph store needs from a graph database.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result holds the records returned by a statement.
type Result struct {
	Records []Record
}

// First returns the first record, or false when the result is empty.
func (r Result) First() (Record, bool) {
	if len(r.Records) == 0 {
		return nil, false
	}
	return r.Records[0], true
}

// Record maps returned column names to values.
type Record map[string]any

// Map returns the column key as a property map. Nodes projected with
// `n {.*}` arrive in this shape.
func (r Record) Map(key string) (map[string]any, error) {
	v, ok := r[key]
	if !ok {
		return nil, fmt.Errorf("record has no column %q", key)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("column %q is %T, not a map", key, v)
	}
	return m, nil
}

// Options configures a graph client.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")
