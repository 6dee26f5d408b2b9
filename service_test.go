package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.New(os.Stdout, "[TEST] ", log.LstdFlags)
}

func newTestService(store Store) *Service {
	return NewService(store, NewAllocator(store, 10, 5), newTestLogger())
}

func completePayload() RecordPayload {
	return RecordPayload{
		Pots:     [][]string{{"Brazil", "Argentina"}, {"France", "Spain"}},
		Teams:    []string{"Brazil", "Argentina", "France", "Spain"},
		Fixtures: []json.RawMessage{fixture(`{"home":"Brazil","away":"France"}`)},
		Meta:     map[string]interface{}{"title": "Group Stage"},
	}
}

func TestCreateRecordDraft(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewMemoryStore())

	rec, err := svc.CreateRecord(ctx, RecordPayload{})
	require.NoError(t, err)

	assert.Len(t, rec.ID, 10)
	assert.Equal(t, StatusDraft, rec.Status)
	assert.Equal(t, 1, rec.Version)
	assert.True(t, rec.UpdatedAt.Equal(rec.CreatedAt))
	assert.Empty(t, rec.Pots)
	assert.Empty(t, rec.Teams)
	assert.Empty(t, rec.Fixtures)
	assert.NotNil(t, rec.Meta)
}

func TestCreateRecordReady(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewMemoryStore())

	rec, err := svc.CreateRecord(ctx, completePayload())
	require.NoError(t, err)
	assert.Equal(t, StatusReady, rec.Status)
}

func TestCreateRecordWhitespacePotEntryStaysDraft(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewMemoryStore())

	payload := completePayload()
	payload.Pots = [][]string{{"Brazil", "   "}}
	rec, err := svc.CreateRecord(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, rec.Status)
}

func TestCreateRecordExhaustion(t *testing.T) {
	ctx := context.Background()
	store := &probeStore{exists: func(string) (bool, error) { return true, nil }}
	svc := NewService(store, NewAllocator(store, 10, 5), newTestLogger())

	_, err := svc.CreateRecord(ctx, RecordPayload{})
	assert.ErrorIs(t, err, ErrSlugExhausted)
}

func TestGetRecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewMemoryStore())

	payload := completePayload()
	created, err := svc.CreateRecord(ctx, payload)
	require.NoError(t, err)

	got, err := svc.GetRecord(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Status, got.Status)
	assert.Equal(t, created.Version, got.Version)
	assert.Equal(t, payload.Pots, got.Pots)
	assert.Equal(t, payload.Teams, got.Teams)
	assert.JSONEq(t, string(payload.Fixtures[0]), string(got.Fixtures[0]))
	assert.Equal(t, "Group Stage", got.Meta["title"])
}

func TestGetRecordNotFound(t *testing.T) {
	svc := newTestService(NewMemoryStore())
	_, err := svc.GetRecord(context.Background(), "nosuchslug")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRecordFullReplace(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewMemoryStore())

	created, err := svc.CreateRecord(ctx, completePayload())
	require.NoError(t, err)
	require.Equal(t, StatusReady, created.Status)

	// incomplete update payload: omitted fields become empty, status drops
	// back to draft
	updated, err := svc.UpdateRecord(ctx, created.ID, RecordPayload{
		Teams: []string{"Brazil"},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, updated.Status)
	assert.Equal(t, []string{"Brazil"}, updated.Teams)
	assert.Empty(t, updated.Pots)
	assert.Empty(t, updated.Fixtures)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	assert.Equal(t, created.Version, updated.Version)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	// a complete payload brings it back to ready
	again, err := svc.UpdateRecord(ctx, created.ID, completePayload())
	require.NoError(t, err)
	assert.Equal(t, StatusReady, again.Status)
}

func TestUpdateRecordNotFound(t *testing.T) {
	svc := newTestService(NewMemoryStore())
	_, err := svc.UpdateRecord(context.Background(), "nosuchslug", completePayload())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRecordIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewMemoryStore())

	created, err := svc.CreateRecord(ctx, RecordPayload{})
	require.NoError(t, err)

	payload := completePayload()
	first, err := svc.UpdateRecord(ctx, created.ID, payload)
	require.NoError(t, err)
	second, err := svc.UpdateRecord(ctx, created.ID, payload)
	require.NoError(t, err)

	assert.Equal(t, first.Pots, second.Pots)
	assert.Equal(t, first.Teams, second.Teams)
	assert.Equal(t, first.Fixtures, second.Fixtures)
	assert.Equal(t, first.Meta, second.Meta)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Version, second.Version)
}

func TestLinkLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewMemoryStore())

	slug, target, err := svc.CreateLink(ctx, "https://example.com/page?q=1#section")
	require.NoError(t, err)
	assert.Len(t, slug, 10)
	assert.Equal(t, "https://example.com/page?q=1", target, "fragment must be stripped")

	got, err := svc.GetLink(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, target, got)

	updatedTarget, err := svc.UpdateLink(ctx, slug, "http://other.example/path")
	require.NoError(t, err)
	assert.Equal(t, "http://other.example/path", updatedTarget)
}

func TestUpdateLinkInvalidURLDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewMemoryStore())

	slug, target, err := svc.CreateLink(ctx, "https://example.com/keep")
	require.NoError(t, err)

	_, err = svc.UpdateLink(ctx, slug, "notaurl")
	assert.ErrorIs(t, err, ErrInvalidURL)

	got, err := svc.GetLink(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, target, got)
}

func TestUpdateLinkNotFound(t *testing.T) {
	svc := newTestService(NewMemoryStore())
	_, err := svc.UpdateLink(context.Background(), "nosuchslug", "https://example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain", "https://example.com/a/b", "https://example.com/a/b", false},
		{"query kept", "https://example.com/a?x=1&y=2", "https://example.com/a?x=1&y=2", false},
		{"fragment stripped", "https://example.com/a#frag", "https://example.com/a", false},
		{"no path", "https://example.com", "https://example.com", false},
		{"missing scheme", "example.com/a", "", true},
		{"missing host", "https://", "", true},
		{"garbage", "notaurl", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeURL(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
