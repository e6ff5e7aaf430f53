// Package filings implements the filing history domain for the registry
// dashboard: typed filing records, type/status classification, lazy
// loading of per-filing comments and documents, and reconstruction of
// downloadable document lists from the registry's documents resource.
package filings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// FilingType is a registry filing-type code as returned by the API.
type FilingType string

// Filing-type codes.
const (
	TypeAGMExtension            FilingType = "agmExtension"
	TypeAGMLocationChange       FilingType = "agmLocationChange"
	TypeAlteration              FilingType = "alteration"
	TypeAmalgamationApplication FilingType = "amalgamationApplication"
	TypeAnnualReport            FilingType = "annualReport"
	TypeChangeOfAddress         FilingType = "changeOfAddress"
	TypeChangeOfDirectors       FilingType = "changeOfDirectors"
	TypeChangeOfName            FilingType = "changeOfName"
	TypeChangeOfRegistration    FilingType = "changeOfRegistration"
	TypeConsentContinuationOut  FilingType = "consentContinuationOut"
	TypeContinuationIn          FilingType = "continuationIn"
	TypeContinuationOut         FilingType = "continuationOut"
	TypeConversion              FilingType = "conversion"
	TypeCorrection              FilingType = "correction"
	TypeCourtOrder              FilingType = "courtOrder"
	TypeDissolution             FilingType = "dissolution"
	TypeIncorporationApp        FilingType = "incorporationApplication"
	TypePutBackOn               FilingType = "putBackOn"
	TypeRegistrarsNotation      FilingType = "registrarsNotation"
	TypeRegistrarsOrder         FilingType = "registrarsOrder"
	TypeRegistration            FilingType = "registration"
	TypeRestoration             FilingType = "restoration"
	TypeSpecialResolution       FilingType = "specialResolution"
	TypeTransition              FilingType = "transition"
)

// FilingStatus is a registry filing-status code. Matching is
// case-sensitive against these canonical values.
type FilingStatus string

// Filing-status codes.
const (
	StatusCancelled         FilingStatus = "CANCELLED"
	StatusCompleted         FilingStatus = "COMPLETED"
	StatusCorrected         FilingStatus = "CORRECTED"
	StatusDeleted           FilingStatus = "DELETED"
	StatusDraft             FilingStatus = "DRAFT"
	StatusError             FilingStatus = "ERROR"
	StatusNew               FilingStatus = "NEW"
	StatusPaid              FilingStatus = "PAID"
	StatusPending           FilingStatus = "PENDING"
	StatusPendingCorrection FilingStatus = "PENDING_CORRECTION"
	StatusWithdrawn         FilingStatus = "WITHDRAWN"
)

// Dissolution subtype codes.
const (
	DissolutionAdministrative = "administrative"
	DissolutionInvoluntary    = "involuntary"
	DissolutionVoluntary      = "voluntary"
)

// Restoration subtype codes.
const (
	RestorationFull       = "fullRestoration"
	RestorationLimited    = "limitedRestoration"
	RestorationExtension  = "limitedRestorationExtension"
	RestorationConversion = "limitedRestorationToFull"
)

// Payment method codes.
const (
	PayMethodCreditCard    = "CC"
	PayMethodDirectPay     = "DIRECT_PAY"
	PayMethodOnlineBanking = "ONLINE_BANKING"
)

// Filing represents one filing as returned by the registry API, enriched
// in-memory with lazily loaded comments and documents. Comments and
// Documents stay nil until their first successful fetch; a failed fetch
// resets them to nil so a later expand retries automatically.
type Filing struct {
	FilingID          int64        `json:"filingId"`
	Name              FilingType   `json:"name"`
	FilingSubType     string       `json:"filingSubType,omitempty"`
	DisplayName       string       `json:"displayName"`
	Status            FilingStatus `json:"status"`
	SubmittedDate     string       `json:"submittedDate"`
	EffectiveDate     string       `json:"effectiveDate"`
	IsFutureEffective bool         `json:"isFutureEffective"`
	PaymentMethod     string       `json:"paymentMethod,omitempty"`

	CommentsLink  string `json:"commentsLink,omitempty"`
	DocumentsLink string `json:"documentsLink,omitempty"`

	Comments      []Comment  `json:"comments"`
	CommentsCount int        `json:"commentsCount"`
	Documents     []Document `json:"documents"`

	// Filing-type-specific payloads. Only the field matching Name is
	// populated on a real filing.
	Dissolution *DissolutionDetail `json:"dissolution,omitempty"`
	Restoration *RestorationDetail `json:"restoration,omitempty"`

	// Data carries the same payloads nested one level down. Task
	// wrappers from the to-do endpoint arrive in this shape, and the
	// classifier accepts either.
	Data *FilingData `json:"data,omitempty"`
}

// FilingData is the nested payload wrapper used by task-shaped records.
type FilingData struct {
	Dissolution *DissolutionDetail `json:"dissolution,omitempty"`
	Restoration *RestorationDetail `json:"restoration,omitempty"`
	Order       *OrderDetail       `json:"order,omitempty"`
}

// DissolutionDetail carries dissolution-specific attributes.
type DissolutionDetail struct {
	DissolutionType string `json:"dissolutionType"`
	DissolutionDate string `json:"dissolutionDate,omitempty"`
}

// RestorationDetail carries restoration-specific attributes.
type RestorationDetail struct {
	Type       string `json:"type"`
	ExpiryDate string `json:"expiry,omitempty"`
}

// OrderDetail carries court-order attributes attached to a filing.
type OrderDetail struct {
	FileNumber    string `json:"fileNumber"`
	EffectOfOrder string `json:"effectOfOrder,omitempty"`
}

// Comment is one staff comment attached to a filing.
type Comment struct {
	ID                   int64  `json:"id,omitempty"`
	Comment              string `json:"comment"`
	SubmitterDisplayName string `json:"submitterDisplayName,omitempty"`
	Timestamp            string `json:"timestamp"`
}

// CommentEnvelope mirrors the registry's comment list element, which
// wraps each comment under a "comment" key.
type CommentEnvelope struct {
	Comment Comment `json:"comment"`
}

// Document is one downloadable output derived from a filing's documents
// resource. It is rebuilt on every documents load and never sent back to
// the registry.
type Document struct {
	Title    string `json:"title"`
	Filename string `json:"filename"`
	Link     string `json:"link"`
}

// RawDocuments is the registry's documents resource with its JSON key
// order preserved. Key order determines on-screen document order, so the
// resource cannot round-trip through a Go map.
type RawDocuments []RawDocumentEntry

// RawDocumentEntry is one key of the documents resource with its raw
// undecoded value.
type RawDocumentEntry struct {
	Key   string
	Value json.RawMessage
}

// UnmarshalJSON decodes the documents object while preserving key order.
func (d *RawDocuments) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("documents resource: expected object, got %v", tok)
	}
	var entries RawDocuments
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("documents resource: expected string key, got %v", keyTok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		entries = append(entries, RawDocumentEntry{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*d = entries
	return nil
}

// parseDate parses the registry's timestamp strings. The API emits
// RFC3339; date-only values show up in older filings.
func parseDate(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// dateSuffix renders a timestamp as YYYY-MM-DD for document filenames.
func dateSuffix(raw string) string {
	if t, ok := parseDate(raw); ok {
		return t.UTC().Format("2006-01-02")
	}
	if len(raw) >= 10 {
		return raw[:10]
	}
	return raw
}
