package domain

import "errors"

var (
	ErrBadEncoding         = errors.New("file is not valid TIS-620 encoded text")
	ErrEmptyExtract        = errors.New("extract contains no usable rows")
	ErrExtractNotFound     = errors.New("extract not found")
	ErrDateOutOfRange      = errors.New("date outside extract range")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
)
