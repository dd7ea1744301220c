// Package witsml defines the contract of a remote WITSML-style store as consumed by the transfer
// engine. The wire encoding of a real store is out of scope; implementations live elsewhere.
package witsml

import (
	"context"
	"errors"
)

// ReturnElements selects how much of each matching object a query returns.
type ReturnElements string

const (
	ReturnRequested  ReturnElements = "requested"
	ReturnAll        ReturnElements = "all"
	ReturnIDOnly     ReturnElements = "id-only"
	ReturnHeaderOnly ReturnElements = "header-only"
	ReturnDataOnly   ReturnElements = "data-only"
)

// OptionsIn carries the per-request options of a get.
type OptionsIn struct {
	ReturnElements ReturnElements
	// MaxReturnNodes caps the number of data rows returned. Zero lets the store decide.
	MaxReturnNodes int
}

// QueryResult is the structured outcome of a write. A failed result is a business failure,
// not a transport error.
type QueryResult struct {
	IsSuccessful bool   `json:"isSuccessful" msgpack:"isSuccessful"`
	Reason       string `json:"reason,omitempty" msgpack:"reason,omitempty"`
}

// Success returns a successful QueryResult.
func Success() QueryResult {
	return QueryResult{IsSuccessful: true}
}

// Failure returns a failed QueryResult carrying the store's reason.
func Failure(reason string) QueryResult {
	return QueryResult{IsSuccessful: false, Reason: reason}
}

// ErrTransport marks errors raised because the remote channel itself failed.
var ErrTransport = errors.New("witsml transport failure")

// Client is a connection to one store. Implementations are stateless request/response and
// safe for concurrent use.
type Client interface {
	GetFromStore(ctx context.Context, query Query, options OptionsIn) (*ObjectSet, error)
	AddToStore(ctx context.Context, doc Document) (QueryResult, error)
	UpdateInStore(ctx context.Context, doc Document) (QueryResult, error)
	DeleteFromStore(ctx context.Context, doc Document) (QueryResult, error)
	// ServerUrl identifies the store in results and refresh actions.
	ServerUrl() string
}
