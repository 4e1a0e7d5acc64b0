package services

import "errors"

var (
	ErrContentTypeNotFound = errors.New("content type not configured")
	ErrItemNotFound        = errors.New("content item not found")
	ErrDuplicateID         = errors.New("duplicate content item id")
	ErrMissingID           = errors.New("content item without id")
	ErrUnknownDataKind     = errors.New("unknown data kind")
	ErrFetchStatus         = errors.New("unexpected fetch status")
	ErrUndefinedMacro      = errors.New("undefined bibtex string macro")
)
