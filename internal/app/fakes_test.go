package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"paperarchive/internal/model"
	"paperarchive/internal/objectstore"
)

type fakeObjectStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	seq       int
	storeErr  error
	removeErr error
	removed   []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (f *fakeObjectStore) Store(_ context.Context, content []byte, hints objectstore.ObjectHints) (objectstore.StoredObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return objectstore.StoredObject{}, f.storeErr
	}
	f.seq++
	ref := fmt.Sprintf("question-papers/%d_%s", f.seq, hints.FileName)
	f.objects[ref] = content
	return objectstore.StoredObject{Ref: ref, URL: "https://cdn.example.com/" + ref}, nil
}

func (f *fakeObjectStore) Remove(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, ref)
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.objects, ref)
	return nil
}

func (f *fakeObjectStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.PaperEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event model.PaperEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type memoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newMemoryDenylist() *memoryDenylist {
	return &memoryDenylist{revoked: map[string]time.Duration{}}
}

func (d *memoryDenylist) Revoke(_ context.Context, id string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.revoked[id] = ttl
	return nil
}

func (d *memoryDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	_, ok := d.revoked[id]
	return ok, nil
}

var errBoom = errors.New("boom")

// steppingClock advances by step on every call.
type steppingClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}
