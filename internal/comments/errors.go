package comments

import "errors"

// ErrInvalidInput indicates a missing or oversized comment body.
var ErrInvalidInput = errors.New("invalid comment input")

// ErrNoCommentsLink indicates the filing has no comments link to post to.
var ErrNoCommentsLink = errors.New("filing has no comments link")
