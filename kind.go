package cdr

import "github.com/Lichtblick-Suite/cdr/errs"

// Kind is the one-byte encapsulation tag that opens every CDR stream: it selects
// endianness, CDR version (XCDR1/XCDR2), and header mode (plain/parameter-list/delimited).
type Kind uint8

// The OMG-numbered encapsulation kinds used by RTPS. PL_CDR/PL_CDR2 and D_CDR2 carry
// parameter-list and delimited-aggregate framing respectively; all others are plain.
const (
	KindCDR_BE     Kind = 0x00 // big-endian, XCDR1, plain
	KindCDR_LE     Kind = 0x01 // little-endian, XCDR1, plain
	KindPLCDR_BE   Kind = 0x02 // big-endian, XCDR1, parameter-list
	KindPLCDR_LE   Kind = 0x03 // little-endian, XCDR1, parameter-list
	KindCDR2_BE    Kind = 0x10 // big-endian, XCDR2, plain
	KindCDR2_LE    Kind = 0x11 // little-endian, XCDR2, plain
	KindPLCDR2_BE  Kind = 0x12 // big-endian, XCDR2, parameter-list
	KindPLCDR2_LE  Kind = 0x13 // little-endian, XCDR2, parameter-list
	KindDCDR2_BE   Kind = 0x14 // big-endian, XCDR2, delimited
	KindDCDR2_LE   Kind = 0x15 // little-endian, XCDR2, delimited
)

// kindInfo is the decoded meaning of a Kind: everything a Writer or Reader needs to pick
// an EndianEngine and a header strategy.
type kindInfo struct {
	littleEndian    bool
	isXCDR2         bool
	isDelimited     bool
	isParameterList bool
}

var kindTable = map[Kind]kindInfo{
	KindCDR_BE:    {littleEndian: false, isXCDR2: false},
	KindCDR_LE:    {littleEndian: true, isXCDR2: false},
	KindPLCDR_BE:  {littleEndian: false, isXCDR2: false, isParameterList: true},
	KindPLCDR_LE:  {littleEndian: true, isXCDR2: false, isParameterList: true},
	KindCDR2_BE:   {littleEndian: false, isXCDR2: true},
	KindCDR2_LE:   {littleEndian: true, isXCDR2: true},
	KindPLCDR2_BE: {littleEndian: false, isXCDR2: true, isParameterList: true},
	KindPLCDR2_LE: {littleEndian: true, isXCDR2: true, isParameterList: true},
	KindDCDR2_BE:  {littleEndian: false, isXCDR2: true, isDelimited: true},
	KindDCDR2_LE:  {littleEndian: true, isXCDR2: true, isDelimited: true},
}

// lookup resolves a Kind to its kindInfo, or errs.ErrInvalidEncapsulation for an
// unrecognized byte.
func (k Kind) lookup() (kindInfo, error) {
	info, ok := kindTable[k]
	if !ok {
		return kindInfo{}, errs.ErrInvalidEncapsulation
	}

	return info, nil
}

// LittleEndian reports whether k encodes in little-endian byte order. ok is false for an
// unrecognized kind.
func (k Kind) LittleEndian() (le bool, ok bool) {
	info, err := k.lookup()
	return info.littleEndian, err == nil
}

// IsXCDR2 reports whether k is an Extended CDR version 2 kind (vs. XCDR1).
func (k Kind) IsXCDR2() (yes bool, ok bool) {
	info, err := k.lookup()
	return info.isXCDR2, err == nil
}

// IsDelimited reports whether k uses DHEADER-delimited aggregate framing.
func (k Kind) IsDelimited() (yes bool, ok bool) {
	info, err := k.lookup()
	return info.isDelimited, err == nil
}

// IsParameterList reports whether k uses XCDR1/XCDR2 parameter-list (PID/EMHEADER) framing.
func (k Kind) IsParameterList() (yes bool, ok bool) {
	info, err := k.lookup()
	return info.isParameterList, err == nil
}

// Valid reports whether k is one of the ten recognized encapsulation kinds.
func (k Kind) Valid() bool {
	_, ok := kindTable[k]
	return ok
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindCDR_BE:
		return "CDR_BE"
	case KindCDR_LE:
		return "CDR_LE"
	case KindPLCDR_BE:
		return "PL_CDR_BE"
	case KindPLCDR_LE:
		return "PL_CDR_LE"
	case KindCDR2_BE:
		return "CDR2_BE"
	case KindCDR2_LE:
		return "CDR2_LE"
	case KindPLCDR2_BE:
		return "PL_CDR2_BE"
	case KindPLCDR2_LE:
		return "PL_CDR2_LE"
	case KindDCDR2_BE:
		return "D_CDR2_BE"
	case KindDCDR2_LE:
		return "D_CDR2_LE"
	default:
		return "Unknown"
	}
}
