package beheader

import "errors"

var (
	ErrInvalidJob         = errors.New("beheader: invalid job")
	ErrLayoutOverflow     = errors.New("beheader: header layout overflow")
	ErrNoFixedPoint       = errors.New("beheader: stream length search did not converge")
	ErrPayloadTooLarge    = errors.New("beheader: payload too large")
	ErrTruncatedContainer = errors.New("beheader: truncated media container")
	ErrXRefNotFound       = errors.New("beheader: xref anchors not found")
	ErrOffsetOverflow     = errors.New("beheader: xref offset overflow")
	ErrArchiveMerge       = errors.New("beheader: archive merge failed")
	ErrTranscode          = errors.New("beheader: transcode failed")
	ErrLimitExceeded      = errors.New("beheader: limit exceeded")
)
