package domain

import (
	"fmt"
	"time"
)

// LeadStatus is the outreach state of a lead.
type LeadStatus string

const (
	StatusPending    LeadStatus = "PENDING"
	StatusReachedOut LeadStatus = "REACHED_OUT"
)

// LeadStatuses lists every status a lead may hold.
var LeadStatuses = []LeadStatus{StatusPending, StatusReachedOut}

// Valid reports whether s is one of the enumerated statuses.
func (s LeadStatus) Valid() bool {
	for _, known := range LeadStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseLeadStatus converts raw into a LeadStatus. The match is case-sensitive.
func ParseLeadStatus(raw string) (LeadStatus, error) {
	s := LeadStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// Lead represents a submitted applicant record tracked through an outreach status.
// Fields are serialized without omitempty so empty strings and null visa lists
// survive a round trip through any backend.
type Lead struct {
	ID                   string     `json:"id"`
	FirstName            string     `json:"firstName"`
	LastName             string     `json:"lastName"`
	Email                string     `json:"email"`
	LinkedinURL          string     `json:"linkedin"`
	CountryOfCitizenship string     `json:"countryOfCitizenship"`
	InterestedVisas      []string   `json:"interestedVisas"`
	ResumeURL            string     `json:"resumeUrl"`
	OpenInput            string     `json:"openInput"`
	Status               LeadStatus `json:"status"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// FullName joins first and last name the way search matches them.
func (l Lead) FullName() string {
	return l.FirstName + " " + l.LastName
}

// Clone returns a copy of l that shares no memory with it.
func (l Lead) Clone() Lead {
	if l.InterestedVisas != nil {
		visas := make([]string, len(l.InterestedVisas))
		copy(visas, l.InterestedVisas)
		l.InterestedVisas = visas
	}
	return l
}

// CloneLeads deep-copies a collection, preserving a nil input as nil.
func CloneLeads(leads []Lead) []Lead {
	if leads == nil {
		return nil
	}
	out := make([]Lead, len(leads))
	for i, l := range leads {
		out[i] = l.Clone()
	}
	return out
}

// LeadInput carries the fields of a new lead that the caller supplies.
// Identity, status and timestamps are assigned by the mutation service.
type LeadInput struct {
	FirstName            string
	LastName             string
	Email                string
	LinkedinURL          string
	CountryOfCitizenship string
	InterestedVisas      []string
	ResumeURL            string
	OpenInput            string
}

// LeadPatch is a partial update. Only non-nil fields override the stored record.
type LeadPatch struct {
	FirstName            *string
	LastName             *string
	Email                *string
	LinkedinURL          *string
	CountryOfCitizenship *string
	InterestedVisas      *[]string
	ResumeURL            *string
	OpenInput            *string
	Status               *LeadStatus
}

// StatusPatch builds a patch that only changes the status.
func StatusPatch(s LeadStatus) LeadPatch {
	return LeadPatch{Status: &s}
}

// Apply merges the patch over l and returns the result. Timestamps and id are never touched.
func (p LeadPatch) Apply(l Lead) Lead {
	out := l.Clone()
	if p.FirstName != nil {
		out.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		out.LastName = *p.LastName
	}
	if p.Email != nil {
		out.Email = *p.Email
	}
	if p.LinkedinURL != nil {
		out.LinkedinURL = *p.LinkedinURL
	}
	if p.CountryOfCitizenship != nil {
		out.CountryOfCitizenship = *p.CountryOfCitizenship
	}
	if p.InterestedVisas != nil {
		visas := *p.InterestedVisas
		if visas != nil {
			visas = append([]string(nil), visas...)
		}
		out.InterestedVisas = visas
	}
	if p.ResumeURL != nil {
		out.ResumeURL = *p.ResumeURL
	}
	if p.OpenInput != nil {
		out.OpenInput = *p.OpenInput
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	return out
}

// ListParams selects a page of the collection.
// Empty Search and Status mean "no constraint".
type ListParams struct {
	Search string
	Status string
	Page   int
	Limit  int
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// LeadPage is one page of a filtered listing plus its pagination metadata.
type LeadPage struct {
	Items      []Lead `json:"items"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
}

// LeadEvent is emitted after a committed mutation of the collection.
type LeadEvent struct {
	ID         string         `json:"event_id"`
	Type       string         `json:"type"`
	LeadID     string         `json:"lead_id,omitempty"`
	Status     LeadStatus     `json:"status,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
	Redacted   bool           `json:"redacted,omitempty"`
}

const (
	EventLeadCreated       = "lead.created"
	EventLeadStatusChanged = "lead.status_changed"
	EventLeadDeleted       = "lead.deleted"
	EventCollectionReset   = "collection.reset"
)
