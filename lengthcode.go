package cdr

import "github.com/Lichtblick-Suite/cdr/errs"

// LengthCode is the 3-bit LC field of an XCDR2 EMHEADER (bits 28-30), selecting how a
// parameter-list member's byte size is derived on decode.
type LengthCode uint8

const (
	LC0 LengthCode = 0 // object is 1 byte
	LC1 LengthCode = 1 // object is 2 bytes
	LC2 LengthCode = 2 // object is 4 bytes
	LC3 LengthCode = 3 // object is 8 bytes
	LC4 LengthCode = 4 // NEXTINT = object byte-length
	LC5 LengthCode = 5 // NEXTINT = object byte-length; NEXTINT is also reused as the member's first 4 bytes
	LC6 LengthCode = 6 // NEXTINT = object length in units of 4 bytes; reused
	LC7 LengthCode = 7 // NEXTINT = object length in units of 8 bytes; reused
)

// fixedSizes gives the mandatory objectSize for LC 0-3.
var fixedSizes = map[LengthCode]int{
	LC0: 1,
	LC1: 2,
	LC2: 4,
	LC3: 8,
}

// readRaw reports whether a length code's NEXTINT doubles as the first bytes of the
// member's serialized form (the "reused NEXTINT" optimization), true for LC 5-7.
func (lc LengthCode) readRaw() bool {
	return lc == LC5 || lc == LC6 || lc == LC7
}

// SelectLengthCode picks the smallest length code that fits objectSize, choosing only
// among LC 0-4: LC 5-7 are optional encode-time optimizations the caller must request
// explicitly via an EMHeaderOptions.LengthCode override, never inferred automatically.
func SelectLengthCode(objectSize int) LengthCode {
	switch objectSize {
	case 1:
		return LC0
	case 2:
		return LC1
	case 4:
		return LC2
	case 8:
		return LC3
	default:
		return LC4
	}
}

// validateObjectSize checks objectSize against the encoding rule for lc, returning
// errs.ErrBadLengthCode if inconsistent.
func validateObjectSize(lc LengthCode, objectSize int) error {
	switch lc {
	case LC0, LC1, LC2, LC3:
		want, ok := fixedSizes[lc]
		if !ok || objectSize != want {
			return errs.ErrBadLengthCode
		}
	case LC4, LC5:
		// any non-negative size is representable as a uint32 NEXTINT
	case LC6:
		if objectSize%4 != 0 {
			return errs.ErrBadLengthCode
		}
	case LC7:
		if objectSize%8 != 0 {
			return errs.ErrBadLengthCode
		}
	default:
		return errs.ErrBadLengthCode
	}

	return nil
}

// nextIntValue returns the uint32 NEXTINT value written for lc given objectSize, per the
// EMHEADER length-code table (LC 6/7 store the size scaled down to 4- or 8-byte units).
func nextIntValue(lc LengthCode, objectSize int) uint32 {
	switch lc {
	case LC6:
		return uint32(objectSize >> 2) //nolint:gosec
	case LC7:
		return uint32(objectSize >> 3) //nolint:gosec
	default:
		return uint32(objectSize) //nolint:gosec
	}
}

// objectSizeFromNextInt is the decode-side inverse of nextIntValue.
func objectSizeFromNextInt(lc LengthCode, nextInt uint32) int {
	switch lc {
	case LC6:
		return int(nextInt) * 4
	case LC7:
		return int(nextInt) * 8
	default:
		return int(nextInt)
	}
}
