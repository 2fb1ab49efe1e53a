// Package store provides storage abstractions for the broker.
//
// This package defines interfaces for the order database, allowing the order
// monitor and the status API to be decoupled from the specific database
// implementation. This enables easier testing with fakes and potential
// support for different storage backends.
package store
