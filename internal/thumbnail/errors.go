package thumbnail

import "errors"

// Error kinds the engine can encounter internally. None of these cross the
// public Load/Cancel API boundary: a failed request simply delivers a
// handle whose GetData reports ok=false.
var (
	ErrSourceUnreadable = errors.New("thumbnail: source unreadable")
	ErrDecodeFailed     = errors.New("thumbnail: decode failed")
	ErrStale            = errors.New("thumbnail: stale on-disk thumbnail")
	ErrHelperFailed     = errors.New("thumbnail: external helper failed")
	ErrBackendAlreadySet = errors.New("thumbnail: backend already installed")
)
