package cdr

import (
	"fmt"
	"math"

	"github.com/Lichtblick-Suite/cdr/endian"
	"github.com/Lichtblick-Suite/cdr/errs"
	"github.com/Lichtblick-Suite/cdr/internal/memberid"
	"github.com/Lichtblick-Suite/cdr/internal/options"
	"github.com/Lichtblick-Suite/cdr/internal/pool"
)

// SENTINEL_PID and EXTENDED_PID are the two reserved XCDR1 parameter-list PID values.
const (
	SentinelPID uint16 = 0x3F02
	ExtendedPID uint16 = 0x3F01

	mustUnderstandXCDR1 uint16 = 0x4000
	mustUnderstandXCDR2 uint32 = 0x80000000
	maxMemberIDXCDR2    uint32 = 0x0FFFFFFF
	maxShortPID         uint16 = 0x3F00
	maxShortObjectSize  uint16 = 0xFFFF
)

// Writer serializes values into a CDR/XCDR1/XCDR2 byte stream.
//
// A Writer owns its buffer exclusively and is not safe for concurrent use. Use
// NewWriter to construct one; every method, Release included, panics if called after
// Release.
type Writer struct {
	buf    *pool.Buffer
	pooled bool

	kind     Kind
	engine   endian.EndianEngine
	xcdr2    bool
	offset   int
	origin   int

	members  *memberid.Tracker
	released bool
}

// WithBuffer supplies a pre-owned buffer for the Writer to grow from. Mutually exclusive
// with WithSize.
func WithBuffer(buf []byte) options.Option[*writerConfig] {
	return options.New(func(c *writerConfig) error {
		if c.sizeSet {
			return errs.ErrBufferAndSizeBothSet
		}
		c.buffer = buf
		c.bufferSet = true

		return nil
	})
}

// WithSize supplies an initial capacity for the Writer's internally allocated buffer.
// Mutually exclusive with WithBuffer.
func WithSize(size int) options.Option[*writerConfig] {
	return options.New(func(c *writerConfig) error {
		if c.bufferSet {
			return errs.ErrBufferAndSizeBothSet
		}
		c.size = size
		c.sizeSet = true

		return nil
	})
}

// WithKind selects the encapsulation kind the Writer emits. Defaults to KindCDR_LE.
func WithKind(kind Kind) options.Option[*writerConfig] {
	return options.NoError(func(c *writerConfig) {
		c.kind = kind
	})
}

// writerConfig accumulates NewWriter options before construction.
type writerConfig struct {
	buffer    []byte
	bufferSet bool
	size      int
	sizeSet   bool
	kind      Kind
}

// NewWriter creates a Writer, writes the four-byte encapsulation header for kind (default
// KindCDR_LE), and initializes offset = origin = 4.
func NewWriter(opts ...options.Option[*writerConfig]) (*Writer, error) {
	cfg := &writerConfig{kind: KindCDR_LE}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	info, err := cfg.kind.lookup()
	if err != nil {
		return nil, err
	}

	var buf *pool.Buffer
	var pooled bool
	switch {
	case cfg.bufferSet:
		buf = pool.WrapBuffer(cfg.buffer)
	case cfg.sizeSet:
		buf = pool.NewBuffer(cfg.size)
	default:
		buf = pool.Get()
		pooled = true
	}

	engine := endian.GetBigEndianEngine()
	if info.littleEndian {
		engine = endian.GetLittleEndianEngine()
	}

	w := &Writer{
		buf:     buf,
		pooled:  pooled,
		kind:    cfg.kind,
		engine:  engine,
		xcdr2:   info.isXCDR2,
		members: memberid.NewTracker(),
	}

	w.buf.ExtendOrGrow(4)
	body := w.buf.Slice(0, 4)
	body[0] = 0x00
	body[1] = byte(cfg.kind)
	body[2] = 0x00
	body[3] = 0x00
	w.offset = 4
	w.origin = 4

	return w, nil
}

// checkAlive panics if the Writer has been Released.
func (w *Writer) checkAlive() {
	if w.released {
		panic("cdr: Writer used after Release")
	}
}

// align64 returns the alignment width for a 64-bit primitive under this stream's version.
func (w *Writer) align64() int {
	if w.xcdr2 {
		return 4
	}

	return 8
}

// padTo pads offset forward so that (offset - origin) mod width == 0, writing zero bytes.
func (w *Writer) padTo(width int) {
	if width <= 1 {
		return
	}

	r := (w.offset - w.origin) % width
	if r == 0 {
		return
	}

	pad := width - r
	w.reserve(pad)
	dst := w.buf.Slice(w.offset, w.offset+pad)
	for i := range dst {
		dst[i] = 0
	}
	w.offset += pad
}

// reserve ensures the buffer can accept n more bytes at the current offset, growing it
// (doubling, floored at the requirement) if necessary.
func (w *Writer) reserve(n int) {
	need := w.offset + n
	if need <= w.buf.Len() {
		return
	}

	w.buf.Grow(need - w.buf.Len())
	w.buf.SetLength(need)
}

func (w *Writer) writeByte(b byte) {
	w.reserve(1)
	w.buf.Slice(w.offset, w.offset+1)[0] = b
	w.offset++
}

// Int8 writes a signed 8-bit integer. No alignment required.
func (w *Writer) Int8(v int8) {
	w.checkAlive()
	w.writeByte(byte(v))
}

// Uint8 writes an unsigned 8-bit integer. No alignment required.
func (w *Writer) Uint8(v uint8) {
	w.checkAlive()
	w.writeByte(v)
}

// Int16 writes a signed 16-bit integer, aligned to 2 bytes, in the stream's endianness.
func (w *Writer) Int16(v int16) {
	w.Uint16(uint16(v))
}

// Uint16 writes an unsigned 16-bit integer, aligned to 2 bytes, in the stream's
// endianness.
func (w *Writer) Uint16(v uint16) {
	w.checkAlive()
	w.padTo(2)
	w.reserve(2)
	w.engine.PutUint16(w.buf.Slice(w.offset, w.offset+2), v)
	w.offset += 2
}

// Uint16BE writes an unsigned 16-bit integer in forced big-endian order, regardless of
// the stream's encapsulation. Still aligns to 2 bytes.
func (w *Writer) Uint16BE(v uint16) {
	w.checkAlive()
	w.padTo(2)
	w.reserve(2)
	endian.GetBigEndianEngine().PutUint16(w.buf.Slice(w.offset, w.offset+2), v)
	w.offset += 2
}

// Int32 writes a signed 32-bit integer, aligned to 4 bytes, in the stream's endianness.
func (w *Writer) Int32(v int32) {
	w.Uint32(uint32(v))
}

// Uint32 writes an unsigned 32-bit integer, aligned to 4 bytes, in the stream's
// endianness.
func (w *Writer) Uint32(v uint32) {
	w.checkAlive()
	w.padTo(4)
	w.reserve(4)
	w.engine.PutUint32(w.buf.Slice(w.offset, w.offset+4), v)
	w.offset += 4
}

// Uint32BE writes an unsigned 32-bit integer in forced big-endian order.
func (w *Writer) Uint32BE(v uint32) {
	w.checkAlive()
	w.padTo(4)
	w.reserve(4)
	endian.GetBigEndianEngine().PutUint32(w.buf.Slice(w.offset, w.offset+4), v)
	w.offset += 4
}

// Int64 writes a signed 64-bit integer, aligned to 8 bytes under XCDR1 or 4 bytes under
// XCDR2, in the stream's endianness.
func (w *Writer) Int64(v int64) {
	w.Uint64(uint64(v))
}

// Uint64 writes an unsigned 64-bit integer, aligned to 8 bytes under XCDR1 or 4 bytes
// under XCDR2, in the stream's endianness.
func (w *Writer) Uint64(v uint64) {
	w.checkAlive()
	width := w.align64()
	w.padTo(width)
	w.reserve(8)
	w.engine.PutUint64(w.buf.Slice(w.offset, w.offset+8), v)
	w.offset += 8
}

// Uint64BE writes an unsigned 64-bit integer in forced big-endian order.
func (w *Writer) Uint64BE(v uint64) {
	w.checkAlive()
	width := w.align64()
	w.padTo(width)
	w.reserve(8)
	endian.GetBigEndianEngine().PutUint64(w.buf.Slice(w.offset, w.offset+8), v)
	w.offset += 8
}

// Float32 writes a 32-bit IEEE 754 float, aligned to 4 bytes.
func (w *Writer) Float32(v float32) {
	w.Uint32(math.Float32bits(v))
}

// Float64 writes a 64-bit IEEE 754 float, aligned to 8 bytes under XCDR1 or 4 bytes under
// XCDR2.
func (w *Writer) Float64(v float64) {
	w.Uint64(math.Float64bits(v))
}

// String writes v as a counted, null-terminated UTF-8 byte sequence. Unless
// writeLength is false, a 4-byte-aligned uint32 length (the true UTF-8 byte length plus
// one for the terminator) precedes the bytes.
func (w *Writer) String(v string, writeLength bool) {
	w.checkAlive()

	n := len(v) // Go strings are already a byte sequence: len(v) IS the UTF-8 byte length.
	if writeLength {
		w.Uint32(uint32(n) + 1) //nolint:gosec
	}

	w.reserve(n + 1)
	dst := w.buf.Slice(w.offset, w.offset+n)
	copy(dst, v)
	w.offset += n
	w.writeByte(0)
}

// SequenceLength writes the uint32 count prefix for an ordinary (non-parameter-list)
// sequence.
func (w *Writer) SequenceLength(n int) {
	w.Uint32(uint32(n)) //nolint:gosec
}

// DHeader writes the uint32 delimiter preceding a delimited aggregate. It also resets
// the member-id tracker, since a DHEADER opens a new aggregate scope: XCDR2 member ids
// (including DHEADER-delimited nested structs) are only required to be distinct within
// the aggregate they belong to, not across a Writer's whole lifetime.
func (w *Writer) DHeader(objectSize int) {
	w.Uint32(uint32(objectSize)) //nolint:gosec
	w.members.Reset()
}

// EMHeaderOptions configures an explicit XCDR2 length code for EMHeader. A zero value
// selects SelectLengthCode(objectSize) automatically.
type EMHeaderOptions struct {
	LengthCode LengthCode
	Explicit   bool
}

// EMHeader writes an Extended Member Header, dispatching on the stream's encapsulation
// version. In XCDR1 it writes the short or Extended PID form depending on id and
// objectSize, then resets origin to the new offset. In XCDR2 it writes the length-code
// EMHEADER form, using opts.LengthCode when opts.Explicit is set or else
// SelectLengthCode(objectSize).
func (w *Writer) EMHeader(mustUnderstand bool, id uint32, objectSize int, opts EMHeaderOptions) error {
	w.checkAlive()

	if err := w.members.Track(id); err != nil {
		return fmt.Errorf("%w: member id %d", err, id)
	}

	if w.xcdr2 {
		return w.emHeaderXCDR2(mustUnderstand, id, objectSize, opts)
	}

	return w.emHeaderXCDR1(mustUnderstand, id, objectSize)
}

func (w *Writer) emHeaderXCDR1(mustUnderstand bool, id uint32, objectSize int) error {
	w.padTo(4)

	muBit := uint16(0)
	if mustUnderstand {
		muBit = mustUnderstandXCDR1
	}

	if id <= uint32(maxShortPID) && objectSize >= 0 && objectSize <= int(maxShortObjectSize) {
		w.Uint16(muBit | uint16(id))
		w.Uint16(uint16(objectSize)) //nolint:gosec
	} else {
		w.Uint16(muBit | ExtendedPID)
		w.Uint16(8)
		w.Uint32(id)
		w.Uint32(uint32(objectSize)) //nolint:gosec
	}

	w.origin = w.offset

	return nil
}

func (w *Writer) emHeaderXCDR2(mustUnderstand bool, id uint32, objectSize int, opts EMHeaderOptions) error {
	if id > maxMemberIDXCDR2 {
		return fmt.Errorf("%w: id %d", errs.ErrIdTooLarge, id)
	}

	lc := SelectLengthCode(objectSize)
	if opts.Explicit {
		lc = opts.LengthCode
	}

	if err := validateObjectSize(lc, objectSize); err != nil {
		return fmt.Errorf("%w: length code %d, size %d", err, lc, objectSize)
	}

	muBit := uint32(0)
	if mustUnderstand {
		muBit = mustUnderstandXCDR2
	}

	w.Uint32(muBit | (uint32(lc) << 28) | id)

	switch lc {
	case LC0, LC1, LC2, LC3:
		// fixed size, already validated; nothing more to write
	default:
		w.Uint32(nextIntValue(lc, objectSize))
	}

	return nil
}

// SentinelHeader terminates an XCDR1 parameter-list aggregate, aligning to 4 and writing
// SENTINEL_PID followed by a zero uint16. No-op under XCDR2.
func (w *Writer) SentinelHeader() {
	w.checkAlive()

	if w.xcdr2 {
		return
	}

	w.padTo(4)
	w.Uint16(SentinelPID)
	w.Uint16(0)
	w.members.Reset()
}

// Uint8Array writes a byte sequence with no alignment required. If writeLength, a
// SequenceLength prefix is emitted first.
func (w *Writer) Uint8Array(v []uint8, writeLength bool) {
	w.checkAlive()

	if writeLength {
		w.SequenceLength(len(v))
	}

	w.reserve(len(v))
	copy(w.buf.Slice(w.offset, w.offset+len(v)), v)
	w.offset += len(v)
}

// Int8Array writes a signed byte sequence with no alignment required.
func (w *Writer) Int8Array(v []int8, writeLength bool) {
	w.checkAlive()

	if writeLength {
		w.SequenceLength(len(v))
	}

	w.reserve(len(v))
	dst := w.buf.Slice(w.offset, w.offset+len(v))
	for i, e := range v {
		dst[i] = byte(e)
	}
	w.offset += len(v)
}

// BUFFER_COPY_THRESHOLD is the minimum element count for a typed-array write or read to
// take the fast path instead of the per-element scalar path. The fast path aligns and
// bounds-checks the whole run once, then encodes each element straight into it through
// the stream's EndianEngine; it does not reinterpret the slice's memory as raw bytes.
const BufferCopyThreshold = 10

// fastPathOK reports whether a typed-array operation of n elements may take the
// bulk-copy fast path: the stream's endianness must match the host's, and there must be
// enough elements to amortize the alignment cost.
func (w *Writer) fastPathOK(n int) bool {
	return n >= BufferCopyThreshold && endian.CompareNativeEndian(w.engine)
}

// Uint16Array writes a uint16 sequence, aligned to 2 bytes, taking the bulk-copy fast
// path when the stream is host-endian and n >= BUFFER_COPY_THRESHOLD.
func (w *Writer) Uint16Array(v []uint16, writeLength bool) {
	w.checkAlive()
	if writeLength {
		w.SequenceLength(len(v))
	}

	w.padTo(2)

	if w.fastPathOK(len(v)) {
		w.reserve(len(v) * 2)
		dst := w.buf.Slice(w.offset, w.offset+len(v)*2)
		for i, e := range v {
			w.engine.PutUint16(dst[i*2:], e)
		}
		w.offset += len(v) * 2

		return
	}

	for _, e := range v {
		w.Uint16(e)
	}
}

// Int16Array writes an int16 sequence, mirroring Uint16Array.
func (w *Writer) Int16Array(v []int16, writeLength bool) {
	w.checkAlive()
	if writeLength {
		w.SequenceLength(len(v))
	}

	w.padTo(2)

	if w.fastPathOK(len(v)) {
		w.reserve(len(v) * 2)
		dst := w.buf.Slice(w.offset, w.offset+len(v)*2)
		for i, e := range v {
			w.engine.PutUint16(dst[i*2:], uint16(e))
		}
		w.offset += len(v) * 2

		return
	}

	for _, e := range v {
		w.Int16(e)
	}
}

// Uint32Array writes a uint32 sequence, aligned to 4 bytes, taking the bulk-copy fast
// path when the stream is host-endian and n >= BUFFER_COPY_THRESHOLD.
func (w *Writer) Uint32Array(v []uint32, writeLength bool) {
	w.checkAlive()
	if writeLength {
		w.SequenceLength(len(v))
	}

	w.padTo(4)

	if w.fastPathOK(len(v)) {
		w.reserve(len(v) * 4)
		dst := w.buf.Slice(w.offset, w.offset+len(v)*4)
		for i, e := range v {
			w.engine.PutUint32(dst[i*4:], e)
		}
		w.offset += len(v) * 4

		return
	}

	for _, e := range v {
		w.Uint32(e)
	}
}

// Int32Array writes an int32 sequence, mirroring Uint32Array.
func (w *Writer) Int32Array(v []int32, writeLength bool) {
	w.checkAlive()
	if writeLength {
		w.SequenceLength(len(v))
	}

	w.padTo(4)

	if w.fastPathOK(len(v)) {
		w.reserve(len(v) * 4)
		dst := w.buf.Slice(w.offset, w.offset+len(v)*4)
		for i, e := range v {
			w.engine.PutUint32(dst[i*4:], uint32(e))
		}
		w.offset += len(v) * 4

		return
	}

	for _, e := range v {
		w.Int32(e)
	}
}

// Float32Array writes a float32 sequence, mirroring Uint32Array.
func (w *Writer) Float32Array(v []float32, writeLength bool) {
	w.checkAlive()
	if writeLength {
		w.SequenceLength(len(v))
	}

	w.padTo(4)

	if w.fastPathOK(len(v)) {
		w.reserve(len(v) * 4)
		dst := w.buf.Slice(w.offset, w.offset+len(v)*4)
		for i, e := range v {
			w.engine.PutUint32(dst[i*4:], math.Float32bits(e))
		}
		w.offset += len(v) * 4

		return
	}

	for _, e := range v {
		w.Float32(e)
	}
}

// Uint64Array writes a uint64 sequence, aligned to 8 bytes under XCDR1 or 4 under XCDR2,
// taking the bulk-copy fast path when the stream is host-endian and n >=
// BUFFER_COPY_THRESHOLD.
func (w *Writer) Uint64Array(v []uint64, writeLength bool) {
	w.checkAlive()
	if writeLength {
		w.SequenceLength(len(v))
	}

	w.padTo(w.align64())

	if w.fastPathOK(len(v)) {
		w.reserve(len(v) * 8)
		dst := w.buf.Slice(w.offset, w.offset+len(v)*8)
		for i, e := range v {
			w.engine.PutUint64(dst[i*8:], e)
		}
		w.offset += len(v) * 8

		return
	}

	for _, e := range v {
		w.Uint64(e)
	}
}

// Int64Array writes an int64 sequence, mirroring Uint64Array.
func (w *Writer) Int64Array(v []int64, writeLength bool) {
	w.checkAlive()
	if writeLength {
		w.SequenceLength(len(v))
	}

	w.padTo(w.align64())

	if w.fastPathOK(len(v)) {
		w.reserve(len(v) * 8)
		dst := w.buf.Slice(w.offset, w.offset+len(v)*8)
		for i, e := range v {
			w.engine.PutUint64(dst[i*8:], uint64(e))
		}
		w.offset += len(v) * 8

		return
	}

	for _, e := range v {
		w.Int64(e)
	}
}

// Float64Array writes a float64 sequence, mirroring Uint64Array.
func (w *Writer) Float64Array(v []float64, writeLength bool) {
	w.checkAlive()
	if writeLength {
		w.SequenceLength(len(v))
	}

	w.padTo(w.align64())

	if w.fastPathOK(len(v)) {
		w.reserve(len(v) * 8)
		dst := w.buf.Slice(w.offset, w.offset+len(v)*8)
		for i, e := range v {
			w.engine.PutUint64(dst[i*8:], math.Float64bits(e))
		}
		w.offset += len(v) * 8

		return
	}

	for _, e := range v {
		w.Float64(e)
	}
}

// Data returns a view of the bytes written so far, [0, Size()).
func (w *Writer) Data() []byte {
	w.checkAlive()
	return w.buf.Slice(0, w.offset)
}

// Size returns the number of bytes written, including the encapsulation header.
func (w *Writer) Size() int {
	w.checkAlive()
	return w.offset
}

// Kind returns the Writer's encapsulation kind.
func (w *Writer) Kind() Kind {
	w.checkAlive()
	return w.kind
}

// Release returns the Writer's internal buffer to the package-level pool, if it came
// from one. Calling any other method after Release panics.
func (w *Writer) Release() {
	w.checkAlive()
	w.released = true

	if w.pooled {
		pool.Put(w.buf)
	}
	w.buf = nil
}
