// Package cdr implements the OMG Common Data Representation wire format, including the
// Extended CDR version 1 (XCDR1) and version 2 (XCDR2) variants and the parameter-list and
// delimited encodings used by DDS-XTypes. CDR is the wire format under DDS/RTPS and ROS 2;
// this package is the codec core a message producer or consumer sits on top of.
//
// # Core Features
//
//   - Ten encapsulation kinds: plain, parameter-list, and delimited CDR/XCDR2, big- and
//     little-endian
//   - XCDR1/XCDR2 alignment and origin-reset rules, including the 64-bit alignment
//     divergence between the two versions
//   - DDS-XTypes Extended Member Header (EMHEADER) encode/decode: short and extended PID
//     forms in XCDR1, length-code (LC 0-7) forms in XCDR2
//   - Fast-path bulk primitive-array writes and reads when the stream is host-endian and
//     the array has at least BufferCopyThreshold elements
//   - A growable write buffer that amortizes allocation while preserving prior offsets
//
// # Basic Usage
//
// Writing a plain XCDR1 little-endian stream:
//
//	import "github.com/Lichtblick-Suite/cdr"
//
//	w, _ := cdr.NewWriter(cdr.WithKind(cdr.KindCDR_LE))
//	w.Uint32(7)
//	w.String("rt/chatter", true)
//	data := w.Data()
//
// Reading it back:
//
//	r, _ := cdr.NewReader(data)
//	n, _ := r.Uint32()
//	name, _ := r.String()
//
// # Package Structure
//
// This package is the entire codec: encapsulation kinds (kind.go), the XCDR2 length-code
// catalog (lengthcode.go), and the Writer/Reader pair (writer.go, reader.go). Supporting
// internal packages (internal/pool, internal/options, internal/strcache, internal/memberid)
// back the Writer and Reader but carry no wire-format logic of their own. The optional
// compress package and the endian package are usable independently of the core codec.
package cdr
