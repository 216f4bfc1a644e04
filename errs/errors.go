// Package errs defines the sentinel errors returned by the cdr codec.
//
// Call sites wrap these with additional context using fmt.Errorf("%w: ...", errs.ErrX, ...)
// so that callers can still use errors.Is against the sentinel while getting a useful
// message. Do not compare error strings; always use errors.Is(err, errs.ErrX).
package errs

import "errors"

var (
	// ErrBufferTooSmall is returned when a read request would exceed the input buffer.
	ErrBufferTooSmall = errors.New("cdr: buffer too small")

	// ErrInvalidEncapsulation is returned for an unrecognized encapsulation kind byte.
	ErrInvalidEncapsulation = errors.New("cdr: invalid encapsulation kind")

	// ErrInvalidString is returned when a string is missing its null terminator or
	// contains invalid UTF-8.
	ErrInvalidString = errors.New("cdr: invalid string")

	// ErrIdTooLarge is returned when an XCDR2 member id exceeds 0x0FFFFFFF.
	ErrIdTooLarge = errors.New("cdr: member id too large")

	// ErrBadLengthCode is returned for a length code outside 0-7, or an objectSize
	// inconsistent with the chosen length code.
	ErrBadLengthCode = errors.New("cdr: bad length code")

	// ErrIntegrityViolation is returned when a sentinel is expected but not found, or a
	// delimiter declares a byte count inconsistent with what was actually consumed.
	ErrIntegrityViolation = errors.New("cdr: integrity violation")

	// ErrBufferAndSizeBothSet is returned by NewWriter when both WithBuffer and WithSize
	// are supplied; exactly one (or neither, for the default capacity) is allowed.
	ErrBufferAndSizeBothSet = errors.New("cdr: buffer and size options are mutually exclusive")

	// ErrDuplicateMemberID is returned by Writer.EMHeader's member-id tracker when the same
	// member id is written twice within one scope (closed by a sentinel header or a DHEADER).
	ErrDuplicateMemberID = errors.New("cdr: duplicate member id in parameter list")
)
