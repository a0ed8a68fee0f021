package blob

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists generated artifacts such as shipping and return labels
type Store interface {
	Write(ctx context.Context, path string, data []byte) error
}

// GridFS stores artifacts in a MongoDB GridFS bucket
type GridFS struct {
	bucket *gridfs.Bucket
}

// NewGridFS creates a GridFS store on the given database
func NewGridFS(db *mongo.Database, bucketName string) (*GridFS, error) {
	opts := options.GridFSBucket()
	if bucketName != "" {
		opts.SetName(bucketName)
	}
	bucket, err := gridfs.NewBucket(db, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create gridfs bucket: %w", err)
	}
	return &GridFS{bucket: bucket}, nil
}

// Write uploads data under path, replacing nothing (labels are content-addressed
// by shipment and package identifiers so paths are unique)
func (g *GridFS) Write(ctx context.Context, path string, data []byte) error {
	stream, err := g.bucket.OpenUploadStream(path)
	if err != nil {
		return fmt.Errorf("failed to open upload stream for %s: %w", path, err)
	}
	if _, err := stream.Write(data); err != nil {
		stream.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close upload stream for %s: %w", path, err)
	}
	return nil
}

// Memory is an in-memory Store used in tests
type Memory struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Write(ctx context.Context, path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[path] = bytes.Clone(data)
	return nil
}

// Get returns the blob stored at path, if any
func (m *Memory) Get(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[path]
	return data, ok
}

// Paths returns every stored path
func (m *Memory) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.blobs))
	for p := range m.blobs {
		out = append(out, p)
	}
	return out
}
