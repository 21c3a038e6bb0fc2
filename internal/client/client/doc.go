// Package client talks to the DBX Resource API over HTTP/JSON.
//
// Client lists every endpoint; HTTPClient implements it. Components that
// use the API declare their own narrower interfaces.
//
// # Error Handling
//
// Non-2xx answers become *StatusError, which matches ErrUnauthorized (401),
// ErrServer (500) and common.ErrorNotFound (404) under errors.Is. Transport
// failures wrap ErrUnavailable. An empty id never reaches the wire; it
// yields ErrMissingID.
package client
