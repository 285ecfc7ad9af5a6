package apperr

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateSlug      = errors.New("duplicate slug")
	ErrInvalidFrontmatter = errors.New("invalid frontmatter")
	ErrReservedSlug       = errors.New("reserved slug")
)
