package main

import (
	"encoding/json"
	"strings"
	"time"
)

// Record status values. A record is ready when its payload passed the
// completeness check at last write, draft otherwise. The two states are freely
// bidirectional under update.
const (
	StatusDraft = "draft"
	StatusReady = "ready"
)

// recordVersion tags the schema revision of the stored document shape, not the
// edit count. Bump it only when the shape changes.
const recordVersion = 1

// Record is the persisted tournament document, addressed by its slug.
type Record struct {
	ID        string                 `json:"id"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
	Status    string                 `json:"status"`
	Version   int                    `json:"version"`
	Meta      map[string]interface{} `json:"meta"`
	Pots      [][]string             `json:"pots"`
	Teams     []string               `json:"teams"`
	Fixtures  []json.RawMessage      `json:"fixtures"`
}

// RecordPayload carries the mutable fields of a record as submitted by a
// caller. All fields are optional; absent slices default to empty.
type RecordPayload struct {
	Meta     map[string]interface{} `json:"meta"`
	Pots     [][]string             `json:"pots"`
	Teams    []string               `json:"teams"`
	Fixtures []json.RawMessage      `json:"fixtures"`
}

// CreateRecordRequest is the body of POST /api/tournaments. Base and
// RoutePrefix optionally override the configured public-URL parts for this one
// record.
type CreateRecordRequest struct {
	RecordPayload
	Base        string `json:"base"`
	RoutePrefix string `json:"routePrefix"`
}

// UpdateRecordRequest is the body of PUT /api/tournaments/{slug}. The update
// is a full replace: omitted fields become empty, not "unchanged".
type UpdateRecordRequest struct {
	RecordPayload
}

// CreateRecordResponse is returned on successful record creation.
type CreateRecordResponse struct {
	Slug   string `json:"slug"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

// CreateLinkRequest is the body of POST /api/links.
type CreateLinkRequest struct {
	URL string `json:"url"`
}

// UpdateLinkRequest is the body of PUT /api/links.
type UpdateLinkRequest struct {
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

// LinkResponse is returned by the link endpoints. URL is the short link on
// create and the stored target on get/update.
type LinkResponse struct {
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

// isComplete reports whether the payload qualifies the record for the ready
// status: pots, teams and fixtures all non-empty, and every pot entry a
// non-empty trimmed string. Any violation forces draft.
func (p RecordPayload) isComplete() bool {
	if len(p.Pots) == 0 || len(p.Teams) == 0 || len(p.Fixtures) == 0 {
		return false
	}
	for _, pot := range p.Pots {
		for _, entry := range pot {
			if strings.TrimSpace(entry) == "" {
				return false
			}
		}
	}
	return true
}

// classify returns the record status implied by the payload.
func (p RecordPayload) classify() string {
	if p.isComplete() {
		return StatusReady
	}
	return StatusDraft
}

// normalized returns a copy of the payload with nil slices and maps replaced
// by empty ones, so stored documents always serialize the payload fields as
// [] / {} rather than null.
func (p RecordPayload) normalized() RecordPayload {
	if p.Meta == nil {
		p.Meta = map[string]interface{}{}
	}
	if p.Pots == nil {
		p.Pots = [][]string{}
	}
	if p.Teams == nil {
		p.Teams = []string{}
	}
	if p.Fixtures == nil {
		p.Fixtures = []json.RawMessage{}
	}
	return p
}
