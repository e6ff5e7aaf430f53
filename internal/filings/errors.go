package filings

import "errors"

// ErrMissingIdentifier indicates neither a business identifier nor a
// temporary registration number is available for the session.
var ErrMissingIdentifier = errors.New("missing business identifier")

// ErrNoSuchFiling indicates an index outside the loaded filing list.
var ErrNoSuchFiling = errors.New("no such filing")
