package pii

import (
	"strings"

	"github.com/V4T54L/lead-intake/internal/domain"
)

const RedactedPlaceholder = "[REDACTED]"

// Redactor blanks configured payload fields of lead events before they leave
// the process.
type Redactor struct {
	fieldsToRedact map[string]struct{}
}

// NewRedactor creates a Redactor for the given payload keys. Blank entries are ignored.
func NewRedactor(fields []string) *Redactor {
	fieldSet := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if field = strings.TrimSpace(field); field != "" {
			fieldSet[field] = struct{}{}
		}
	}
	return &Redactor{fieldsToRedact: fieldSet}
}

// Redact returns a copy of event with the configured fields replaced by
// RedactedPlaceholder. The input payload map is not modified. Fields holding
// empty values are left alone.
func (r *Redactor) Redact(event domain.LeadEvent) domain.LeadEvent {
	if r == nil || len(r.fieldsToRedact) == 0 || len(event.Payload) == 0 {
		return event
	}

	payload := make(map[string]any, len(event.Payload))
	for k, v := range event.Payload {
		payload[k] = v
	}

	for field := range r.fieldsToRedact {
		v, ok := payload[field]
		if !ok || v == nil || v == "" {
			continue
		}
		payload[field] = RedactedPlaceholder
		event.Redacted = true
	}

	event.Payload = payload
	return event
}
