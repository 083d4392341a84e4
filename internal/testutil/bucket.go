package testutil

import (
	"io"
	"sync"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// MemoryBucket keeps objects in a map. Deleting a missing key answers with
// the same 404 service error OSS returns.
type MemoryBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryBucket() *MemoryBucket {
	return &MemoryBucket{objects: map[string][]byte{}}
}

func (b *MemoryBucket) PutObject(key string, r io.Reader, _ ...oss.Option) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return nil
}

func (b *MemoryBucket) DeleteObject(key string, _ ...oss.Option) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[key]; !ok {
		return oss.ServiceError{Code: "NoSuchKey", StatusCode: 404}
	}
	delete(b.objects, key)
	return nil
}

func (b *MemoryBucket) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

func (b *MemoryBucket) Has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok
}
