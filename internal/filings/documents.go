package filings

import (
	"encoding/json"

	"filings-backend/internal/shared/telemetry"
)

const unknownFileNumber = "[unknown]"

// ReconstructDocuments rebuilds f.Documents from the registry's raw
// documents resource. Entry order in raw determines output order. The
// previous document list is discarded. Only f.Documents is mutated; the
// function never fails; malformed entries are logged and skipped.
func ReconstructDocuments(f *Filing, identifier string, raw RawDocuments, staff bool) {
	if f == nil {
		return
	}
	f.Documents = []Document{}
	date := dateSuffix(f.SubmittedDate)

	for _, entry := range raw {
		switch entry.Key {
		case "legalFilings":
			groups, err := decodeLegalFilings(entry.Value)
			if err != nil {
				telemetry.Warn("documents.legal_filings_malformed", map[string]any{
					"filing_id": f.FilingID,
					"err":       err.Error(),
				})
				continue
			}
			for _, group := range groups {
				for _, legal := range group {
					link := decodeLink(legal.Value)
					title := legalFilingTitle(f, legal.Key)
					appendDocument(f, Document{
						Title:    title,
						Filename: outputFilename(identifier, title, date),
						Link:     link,
					})
				}
			}
		case "uploadedCourtOrder":
			title := f.DisplayName
			if staff {
				title = f.DisplayName + " " + courtOrderFileNumber(f)
			}
			// The uploaded file keeps its human-chosen name: the
			// filename is the title, with no date suffix.
			appendDocument(f, Document{
				Title:    title,
				Filename: title,
				Link:     decodeLink(entry.Value),
			})
		default:
			// Submission-level output (receipt, notice, certificate, ...).
			title := CamelCaseToWords(entry.Key)
			appendDocument(f, Document{
				Title:    title,
				Filename: outputFilename(identifier, title, date),
				Link:     decodeLink(entry.Value),
			})
		}
	}
}

// legalFilingTitle derives the document title for one legal-filing
// output. The entry matching the parent filing's own type is the
// headline document and gets the filing's display name; bundled
// secondary filings get a generic type name.
func legalFilingTitle(f *Filing, key string) string {
	if FilingType(key) == f.Name {
		return f.DisplayName
	}
	return FilingTypeToName(FilingType(key), "", "")
}

func courtOrderFileNumber(f *Filing) string {
	if f.Data != nil && f.Data.Order != nil && f.Data.Order.FileNumber != "" {
		return f.Data.Order.FileNumber
	}
	return unknownFileNumber
}

func outputFilename(identifier, title, date string) string {
	if identifier == "" || title == "" || date == "" {
		return ""
	}
	return identifier + " " + title + " - " + date + ".pdf"
}

// appendDocument adds doc to f.Documents only when all three fields are
// present; incomplete triples are logged and dropped.
func appendDocument(f *Filing, doc Document) {
	if doc.Title == "" || doc.Filename == "" || doc.Link == "" {
		telemetry.Warn("documents.incomplete_record_skipped", map[string]any{
			"filing_id": f.FilingID,
			"title":     doc.Title,
			"filename":  doc.Filename,
			"link":      doc.Link,
		})
		return
	}
	f.Documents = append(f.Documents, doc)
}

// decodeLegalFilings decodes the legalFilings value: an array of
// objects, each mapping filing-type keys to URLs, key order preserved.
func decodeLegalFilings(value json.RawMessage) ([]RawDocuments, error) {
	var groups []RawDocuments
	if err := json.Unmarshal(value, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// decodeLink extracts a URL string value; non-string values yield "".
func decodeLink(value json.RawMessage) string {
	var link string
	if err := json.Unmarshal(value, &link); err != nil {
		return ""
	}
	return link
}
