package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vincentngwk/GIT-ML-DS/internal/cache"
	"github.com/vincentngwk/GIT-ML-DS/internal/dataset"
	"github.com/vincentngwk/GIT-ML-DS/internal/parser"
	"github.com/vincentngwk/GIT-ML-DS/internal/utils"
)

// ParseFunc turns uploaded bytes into a dataset.
type ParseFunc func(name string, data []byte) (*dataset.Dataset, error)

// Resolver decides which dataset a session shows. Parsed uploads are shared
// across sessions by content hash and file name; example datasets are kept
// per session.
type Resolver struct {
	parse      ParseFunc
	seed       uint64
	uploads    *cache.Memo[*dataset.Dataset]
	examples   *cache.Memo[*dataset.Dataset]
	invalidate func(datasetID string)
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithParser replaces parser.Parse.
func WithParser(fn ParseFunc) ResolverOption { return func(r *Resolver) { r.parse = fn } }

// WithSeed makes example datasets reproducible; 0 keeps them random.
func WithSeed(seed uint64) ResolverOption { return func(r *Resolver) { r.seed = seed } }

// WithInvalidate is called with the ID of every dataset a session drops, so
// dependent caches such as reports can follow.
func WithInvalidate(fn func(datasetID string)) ResolverOption {
	return func(r *Resolver) { r.invalidate = fn }
}

// WithMemoSize bounds the number of parsed uploads and examples kept.
func WithMemoSize(n int) ResolverOption {
	return func(r *Resolver) {
		r.uploads = cache.New[*dataset.Dataset](n)
		r.examples = cache.New[*dataset.Dataset](n)
	}
}

// NewResolver returns a Resolver with the default parser registry.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		parse:    parser.Parse,
		uploads:  cache.New[*dataset.Dataset](32),
		examples: cache.New[*dataset.Dataset](256),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnUpload accepts a file for s. On success the session moves to
// HasUploadedData from any state; on failure it keeps its state and the
// error is also left as the session's flash message.
func (r *Resolver) OnUpload(ctx context.Context, s *Session, name string, data []byte) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash := utils.ContentHash(data)
	key := uploadKey(hash, name)
	ds, cached, err := r.uploads.Do(ctx, key, func(context.Context) (*dataset.Dataset, error) {
		return r.parseUpload(name, data, key)
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.flash = err.Error()
		slog.Warn("upload rejected", "session", s.ID, "file", name, "error", err)
		return nil, err
	}
	if s.upload != nil && s.upload.Key != key {
		r.drop(s.upload.Key)
	}
	if s.state == HasExampleData {
		r.dropExample(s.ID)
	}
	s.upload = &Upload{Name: name, Hash: hash, Key: key, Size: len(data), data: data}
	s.state = HasUploadedData
	s.flash = ""
	slog.Info("upload accepted", "session", s.ID, "file", name, "rows", ds.Nrow(), "cols", ds.Ncol(), "cached", cached)
	return ds, nil
}

// OnExample switches s to the example dataset. An active upload wins: the
// call is then a no-op that returns the uploaded dataset.
func (r *Resolver) OnExample(ctx context.Context, s *Session) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == HasUploadedData {
		return r.resolveLocked(s)
	}
	s.state = HasExampleData
	s.flash = ""
	return r.resolveLocked(s)
}

// Resolve returns the dataset s currently shows, or nil when it awaits input.
func (r *Resolver) Resolve(s *Session) (*dataset.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return r.resolveLocked(s)
}

// Reset returns s to AwaitingInput and forgets its data.
func (r *Resolver) Reset(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.dropExample(s.ID)
	s.upload = nil
	s.flash = ""
	s.state = AwaitingInput
}

// Forget releases per-session memo entries, e.g. when a session expires.
func (r *Resolver) Forget(s *Session) { r.dropExample(s.ID) }

func (r *Resolver) resolveLocked(s *Session) (*dataset.Dataset, error) {
	switch s.state {
	case HasUploadedData:
		up := s.upload
		ds, _, err := r.uploads.Do(context.Background(), up.Key, func(context.Context) (*dataset.Dataset, error) {
			return r.parseUpload(up.Name, up.data, up.Key)
		})
		return ds, err
	case HasExampleData:
		ds, _, err := r.examples.Do(context.Background(), s.ID, func(context.Context) (*dataset.Dataset, error) {
			ds := dataset.Example(r.seed)
			ds.ID = "example:" + s.ID
			slog.Info("example dataset generated", "session", s.ID)
			return ds, nil
		})
		return ds, err
	default:
		return nil, nil
	}
}

// uploadKey identifies a parsed upload. The name takes part because its
// extension selects the parser and it is shown in the report.
func uploadKey(hash, name string) string { return hash + ":" + name }

func (r *Resolver) parseUpload(name string, data []byte, key string) (*dataset.Dataset, error) {
	ds, err := r.parse(name, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	ds.ID = key
	return ds, nil
}

func (r *Resolver) drop(key string) {
	r.uploads.Invalidate(key)
	if r.invalidate != nil {
		r.invalidate(key)
	}
}

func (r *Resolver) dropExample(sessionID string) {
	r.examples.Invalidate(sessionID)
	if r.invalidate != nil {
		r.invalidate("example:" + sessionID)
	}
}
