package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"time"
)

// Store key prefixes. Tournament records and plain links live in disjoint
// keyspaces of the same store.
const (
	tournamentKeyPrefix = "tournament:"
	linkKeyPrefix       = "link:"
)

// Service implements the record lifecycle on top of a Store and an Allocator.
// It holds no mutable state of its own and is safe for concurrent use; all
// state lives in the store.
type Service struct {
	store  Store
	alloc  *Allocator
	logger *log.Logger
}

// NewService creates a Service with explicit dependencies.
func NewService(store Store, alloc *Allocator, logger *log.Logger) *Service {
	return &Service{store: store, alloc: alloc, logger: logger}
}

// CreateRecord classifies the payload, reserves a slug and writes the initial
// document. An entirely empty payload is allowed and yields a draft. Exactly
// one store write happens on success.
func (s *Service) CreateRecord(ctx context.Context, payload RecordPayload) (*Record, error) {
	slug, err := s.alloc.Allocate(ctx, tournamentKeyPrefix)
	if err != nil {
		return nil, err
	}

	payload = payload.normalized()
	now := time.Now().UTC()
	rec := &Record{
		ID:        slug,
		CreatedAt: now,
		UpdatedAt: now,
		Status:    payload.classify(),
		Version:   recordVersion,
		Meta:      payload.Meta,
		Pots:      payload.Pots,
		Teams:     payload.Teams,
		Fixtures:  payload.Fixtures,
	}
	if err := s.writeRecord(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetRecord returns the record stored at slug, unchanged: no mutation and no
// status recomputation on read.
func (s *Service) GetRecord(ctx context.Context, slug string) (*Record, error) {
	data, err := s.store.Get(ctx, tournamentKeyPrefix+slug)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decoding record %q: %w", slug, err)
	}
	return &rec, nil
}

// UpdateRecord replaces the mutable fields of an existing record. This is a
// full replace, not a merge-patch: fields omitted from the payload become
// empty, so callers must resend the whole document. Status is reclassified and
// updatedAt refreshed; createdAt and version are preserved from the stored
// record.
func (s *Service) UpdateRecord(ctx context.Context, slug string, payload RecordPayload) (*Record, error) {
	rec, err := s.GetRecord(ctx, slug)
	if err != nil {
		return nil, err
	}

	payload = payload.normalized()
	rec.Meta = payload.Meta
	rec.Pots = payload.Pots
	rec.Teams = payload.Teams
	rec.Fixtures = payload.Fixtures
	rec.Status = payload.classify()
	rec.UpdatedAt = time.Now().UTC()

	if err := s.writeRecord(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) writeRecord(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record %q: %w", rec.ID, err)
	}
	return s.store.Set(ctx, tournamentKeyPrefix+rec.ID, string(data))
}

// CreateLink validates and normalizes rawURL, reserves a slug and stores the
// target. It returns the slug and the normalized target.
func (s *Service) CreateLink(ctx context.Context, rawURL string) (slug, target string, err error) {
	target, err = normalizeURL(rawURL)
	if err != nil {
		return "", "", err
	}
	slug, err = s.alloc.Allocate(ctx, linkKeyPrefix)
	if err != nil {
		return "", "", err
	}
	if err := s.store.Set(ctx, linkKeyPrefix+slug, target); err != nil {
		return "", "", err
	}
	return slug, target, nil
}

// GetLink returns the target URL stored at slug.
func (s *Service) GetLink(ctx context.Context, slug string) (string, error) {
	return s.store.Get(ctx, linkKeyPrefix+slug)
}

// UpdateLink replaces the target of an existing link. The URL is validated
// before the store is touched: on ErrInvalidURL the stored value is unchanged.
// A slug that was never created returns ErrNotFound.
func (s *Service) UpdateLink(ctx context.Context, slug, rawURL string) (string, error) {
	target, err := normalizeURL(rawURL)
	if err != nil {
		return "", err
	}
	exists, err := s.store.Exists(ctx, linkKeyPrefix+slug)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrNotFound
	}
	if err := s.store.Set(ctx, linkKeyPrefix+slug, target); err != nil {
		return "", err
	}
	return target, nil
}

// normalizeURL parses rawURL as an absolute URL and renders it as
// scheme://host/path?query with any fragment stripped. Anything that does not
// carry both a scheme and a host fails with ErrInvalidURL.
func normalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", ErrInvalidURL
	}
	normalized := u.Scheme + "://" + u.Host + u.EscapedPath()
	if u.RawQuery != "" {
		normalized += "?" + u.RawQuery
	}
	return normalized, nil
}
