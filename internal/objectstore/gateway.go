// Package objectstore stores uploaded paper files in the external object
// store and hands back a public URL plus an opaque deletion handle.
package objectstore

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

var ErrStoreFailure = errors.New("object store failure")

const contentTypePDF = "application/pdf"

// Bucket is the subset of *oss.Bucket the gateway needs.
type Bucket interface {
	PutObject(objectKey string, reader io.Reader, options ...oss.Option) error
	DeleteObject(objectKey string, options ...oss.Option) error
}

type ObjectHints struct {
	FileName string
}

type StoredObject struct {
	Ref string
	URL string
}

type Gateway struct {
	bucket     Bucket
	namespace  string
	publicBase string
	now        func() time.Time
}

type Option func(*Gateway)

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// NewGateway builds public URLs from publicBase when set, otherwise from the
// bucket's virtual-hosted endpoint.
func NewGateway(bucket Bucket, namespace, publicBase string, opts ...Option) *Gateway {
	g := &Gateway{
		bucket:     bucket,
		namespace:  strings.Trim(namespace, "/"),
		publicBase: strings.TrimRight(publicBase, "/"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// PublicBaseFor derives the virtual-hosted base URL of a bucket.
func PublicBaseFor(endpoint, bucket string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s", bucket, strings.TrimRight(host, "/"))
}

func (g *Gateway) Store(ctx context.Context, content []byte, hints ObjectHints) (StoredObject, error) {
	key := g.objectKey(hints.FileName)
	err := g.bucket.PutObject(key, bytes.NewReader(content),
		oss.WithContext(ctx),
		oss.ContentType(contentTypePDF),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
		oss.ObjectACL(oss.ACLPublicRead),
	)
	if err != nil {
		return StoredObject{}, fmt.Errorf("%w: put %s: %v", ErrStoreFailure, key, err)
	}
	return StoredObject{Ref: key, URL: g.publicBase + "/" + key}, nil
}

// Remove deletes the object. An object that is already gone counts as removed.
func (g *Gateway) Remove(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	if err := g.bucket.DeleteObject(ref, oss.WithContext(ctx)); err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("%w: delete %s: %v", ErrStoreFailure, ref, err)
	}
	return nil
}

func (g *Gateway) objectKey(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = ".pdf"
	}
	base := slugify(strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName)))
	key := fmt.Sprintf("%s_%s_%s%s", base, g.now().UTC().Format("20060102_150405"), randHex(4), ext)
	if g.namespace == "" {
		return key
	}
	return g.namespace + "/" + key
}

func isNotFound(err error) bool {
	var se oss.ServiceError
	if errors.As(err, &se) {
		return se.StatusCode == 404
	}
	return false
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, s)
	s = strings.Trim(s, "-")
	if s == "" {
		return "paper"
	}
	if len(s) > 64 {
		s = s[:64]
	}
	return s
}

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
