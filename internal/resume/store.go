package resume

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("resume not found")

// Store persists resume bytes and hands back a locator that is saved on the
// application row.
type Store interface {
	Put(ctx context.Context, filename, contentType string, data []byte) (string, error)
	Get(ctx context.Context, locator string) (string, []byte, error)
}

// InlineStore keeps the bytes inside the locator itself as a data URI.
type InlineStore struct{}

func NewInlineStore() *InlineStore {
	return &InlineStore{}
}

func (InlineStore) Put(_ context.Context, _ string, contentType string, data []byte) (string, error) {
	return EncodeDataURI(contentType, data), nil
}

func (InlineStore) Get(_ context.Context, locator string) (string, []byte, error) {
	if locator == "" {
		return "", nil, ErrNotFound
	}
	return DecodeDataURI(locator)
}
