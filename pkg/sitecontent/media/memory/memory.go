package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Resolver is an in-memory implementation of the sitecontent.MediaResolver
// interface. It serves images below a static base URL; the object key of an
// image is its id unless Put registered another one.
type Resolver struct {
	mu      sync.RWMutex
	baseURL string
	keys    map[uuid.UUID]string
}

// New creates a resolver serving images below baseURL
func New(baseURL string) *Resolver {
	return &Resolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		keys:    make(map[uuid.UUID]string),
	}
}

// Put registers the object key of an image
func (r *Resolver) Put(id uuid.UUID, objectKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[id] = strings.TrimLeft(objectKey, "/")
}

// ImageURLs returns the URL of every id
func (r *Resolver) ImageURLs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	urls := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		key, ok := r.keys[id]
		if !ok {
			key = id.String()
		}
		urls[id] = r.baseURL + "/" + key
	}
	return urls, nil
}
