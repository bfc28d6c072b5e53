package history

import "github.com/pkg/errors"

var (
	ErrNotFound          = errors.New("record not found")
	ErrEmptyText         = errors.New("record text is required")
	ErrAlreadyEmpty      = errors.New("history is already empty")
	ErrNothingToExport   = errors.New("no records to export")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrInvalidFilter     = errors.New("invalid filter")
)
