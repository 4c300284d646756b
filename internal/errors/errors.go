package errors

import "errors"

var (
	ErrConfigNotFound  = errors.New("configuration file not found")
	ErrProgressSave    = errors.New("progress store write failed")
	ErrListingStatus   = errors.New("listing page unavailable")
	ErrDownloadStatus  = errors.New("unexpected download status")
	ErrIncompleteBody  = errors.New("download body shorter than announced")
	ErrTransferStalled = errors.New("download stalled")
	ErrNoVersions      = errors.New("no versions configured")
	ErrInvalidVersions = errors.New("invalid versions file")
)
