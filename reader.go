package cdr

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/Lichtblick-Suite/cdr/endian"
	"github.com/Lichtblick-Suite/cdr/errs"
	"github.com/Lichtblick-Suite/cdr/internal/strcache"
)

// Reader deserializes values from a CDR/XCDR1/XCDR2 byte stream.
//
// A Reader borrows a caller-supplied buffer; it never mutates or resizes it, and it must
// not outlive that buffer. It is not safe for concurrent use.
type Reader struct {
	buf    []byte
	kind   Kind
	engine endian.EndianEngine
	xcdr2  bool
	offset int
	origin int
	cache  *strcache.Cache
}

// WithStringCache attaches a UTF-8-validity cache to a Reader, letting repeated String()
// calls on the same byte payload skip the utf8.Valid re-scan. Purely a performance hint:
// it never changes a decoded value or a read-side error.
func WithStringCache(cache *strcache.Cache) func(*Reader) {
	return func(r *Reader) {
		r.cache = cache
	}
}

// NewReader creates a Reader over buf, validating buf is at least 4 bytes, reading the
// encapsulation header, and initializing offset = origin = 4.
func NewReader(buf []byte, opts ...func(*Reader)) (*Reader, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("%w: encapsulation header needs 4 bytes, got %d", errs.ErrBufferTooSmall, len(buf))
	}

	kind := Kind(buf[1])
	info, err := kind.lookup()
	if err != nil {
		return nil, err
	}

	engine := endian.GetBigEndianEngine()
	if info.littleEndian {
		engine = endian.GetLittleEndianEngine()
	}

	r := &Reader{
		buf:    buf,
		kind:   kind,
		engine: engine,
		xcdr2:  info.isXCDR2,
		offset: 4,
		origin: 4,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// align64 returns the alignment width for a 64-bit primitive under this stream's version.
func (r *Reader) align64() int {
	if r.xcdr2 {
		return 4
	}

	return 8
}

func (r *Reader) padTo(width int) error {
	if width <= 1 {
		return nil
	}

	rem := (r.offset - r.origin) % width
	if rem == 0 {
		return nil
	}

	pad := width - rem

	return r.skip(pad)
}

// ensure checks that n more bytes are available at the current offset.
func (r *Reader) ensure(n int) error {
	if r.offset+n > len(r.buf) {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", errs.ErrBufferTooSmall, n, r.offset, len(r.buf))
	}

	return nil
}

func (r *Reader) skip(n int) error {
	if err := r.ensure(n); err != nil {
		return err
	}

	r.offset += n

	return nil
}

func (r *Reader) readByte() (byte, error) {
	if err := r.ensure(1); err != nil {
		return 0, err
	}

	b := r.buf[r.offset]
	r.offset++

	return b, nil
}

// Int8 reads a signed 8-bit integer. No alignment required.
func (r *Reader) Int8() (int8, error) {
	b, err := r.readByte()
	return int8(b), err
}

// Uint8 reads an unsigned 8-bit integer. No alignment required.
func (r *Reader) Uint8() (uint8, error) {
	return r.readByte()
}

// Int16 reads a signed 16-bit integer, aligned to 2 bytes.
func (r *Reader) Int16() (int16, error) {
	v, err := r.Uint16()
	return int16(v), err
}

// Uint16 reads an unsigned 16-bit integer, aligned to 2 bytes, in the stream's
// endianness.
func (r *Reader) Uint16() (uint16, error) {
	if err := r.padTo(2); err != nil {
		return 0, err
	}
	if err := r.ensure(2); err != nil {
		return 0, err
	}

	v := r.engine.Uint16(r.buf[r.offset : r.offset+2])
	r.offset += 2

	return v, nil
}

// Uint16BE reads an unsigned 16-bit integer in forced big-endian order.
func (r *Reader) Uint16BE() (uint16, error) {
	if err := r.padTo(2); err != nil {
		return 0, err
	}
	if err := r.ensure(2); err != nil {
		return 0, err
	}

	v := endian.GetBigEndianEngine().Uint16(r.buf[r.offset : r.offset+2])
	r.offset += 2

	return v, nil
}

// Int32 reads a signed 32-bit integer, aligned to 4 bytes.
func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

// Uint32 reads an unsigned 32-bit integer, aligned to 4 bytes, in the stream's
// endianness.
func (r *Reader) Uint32() (uint32, error) {
	if err := r.padTo(4); err != nil {
		return 0, err
	}
	if err := r.ensure(4); err != nil {
		return 0, err
	}

	v := r.engine.Uint32(r.buf[r.offset : r.offset+4])
	r.offset += 4

	return v, nil
}

// peekUint32 reads an unsigned 32-bit integer at the current offset without
// advancing it or applying alignment padding, for EMHEADER's LC5-7 "reused
// NEXTINT" case where the caller must re-consume these bytes as the member's
// leading field.
func (r *Reader) peekUint32() (uint32, error) {
	if err := r.ensure(4); err != nil {
		return 0, err
	}

	return r.engine.Uint32(r.buf[r.offset : r.offset+4]), nil
}

// Uint32BE reads an unsigned 32-bit integer in forced big-endian order.
func (r *Reader) Uint32BE() (uint32, error) {
	if err := r.padTo(4); err != nil {
		return 0, err
	}
	if err := r.ensure(4); err != nil {
		return 0, err
	}

	v := endian.GetBigEndianEngine().Uint32(r.buf[r.offset : r.offset+4])
	r.offset += 4

	return v, nil
}

// Int64 reads a signed 64-bit integer, aligned to 8 bytes under XCDR1 or 4 under XCDR2.
func (r *Reader) Int64() (int64, error) {
	v, err := r.Uint64()
	return int64(v), err
}

// Uint64 reads an unsigned 64-bit integer, aligned to 8 bytes under XCDR1 or 4 under
// XCDR2, in the stream's endianness.
func (r *Reader) Uint64() (uint64, error) {
	width := r.align64()
	if err := r.padTo(width); err != nil {
		return 0, err
	}
	if err := r.ensure(8); err != nil {
		return 0, err
	}

	v := r.engine.Uint64(r.buf[r.offset : r.offset+8])
	r.offset += 8

	return v, nil
}

// Uint64BE reads an unsigned 64-bit integer in forced big-endian order.
func (r *Reader) Uint64BE() (uint64, error) {
	width := r.align64()
	if err := r.padTo(width); err != nil {
		return 0, err
	}
	if err := r.ensure(8); err != nil {
		return 0, err
	}

	v := endian.GetBigEndianEngine().Uint64(r.buf[r.offset : r.offset+8])
	r.offset += 8

	return v, nil
}

// Float32 reads a 32-bit IEEE 754 float, aligned to 4 bytes.
func (r *Reader) Float32() (float32, error) {
	v, err := r.Uint32()
	return math.Float32frombits(v), err
}

// Float64 reads a 64-bit IEEE 754 float, aligned to 8 bytes under XCDR1 or 4 under
// XCDR2.
func (r *Reader) Float64() (float64, error) {
	v, err := r.Uint64()
	return math.Float64frombits(v), err
}

// String reads a length-prefixed, null-terminated UTF-8 string: a uint32 length L
// (including the terminator), L bytes, validating the final byte is 0 and the first L-1
// bytes are well-formed UTF-8. If a string cache was attached via WithStringCache and
// already recorded this payload as valid, the utf8.Valid re-scan is skipped.
func (r *Reader) String() (string, error) {
	length, err := r.Uint32()
	if err != nil {
		return "", err
	}
	if length == 0 {
		return "", fmt.Errorf("%w: zero-length string has no terminator", errs.ErrInvalidString)
	}

	n := int(length)
	if err := r.ensure(n); err != nil {
		return "", err
	}

	raw := r.buf[r.offset : r.offset+n]
	if raw[n-1] != 0 {
		return "", fmt.Errorf("%w: missing null terminator", errs.ErrInvalidString)
	}

	body := raw[:n-1]
	s := string(body)

	valid := false
	if r.cache != nil {
		_, valid = r.cache.Get(s)
	}

	if !valid {
		if !utf8.Valid(body) {
			return "", fmt.Errorf("%w: invalid UTF-8", errs.ErrInvalidString)
		}
		if r.cache != nil {
			r.cache.Put(s, len(body))
		}
	}

	r.offset += n

	return s, nil
}

// SequenceLength reads the uint32 count prefix for an ordinary (non-parameter-list)
// sequence.
func (r *Reader) SequenceLength() (int, error) {
	n, err := r.Uint32()
	return int(n), err
}

// DHeader reads the uint32 delimiter preceding a delimited aggregate.
func (r *Reader) DHeader() (int, error) {
	n, err := r.Uint32()
	return int(n), err
}

// EMHeaderResult is the decoded form of an Extended Member Header.
type EMHeaderResult struct {
	MustUnderstand bool
	ID             uint32
	ObjectSize     int

	// ReadRaw is true for XCDR2 LC 5-7: NEXTINT is to be re-consumed as the first bytes
	// of the member's serialized form.
	ReadRaw bool
}

// EMHeader reads an Extended Member Header, dispatching on the stream's encapsulation
// version: the short or Extended PID form in XCDR1, or the length-code form in XCDR2.
func (r *Reader) EMHeader() (EMHeaderResult, error) {
	if r.xcdr2 {
		return r.emHeaderXCDR2()
	}

	return r.emHeaderXCDR1()
}

func (r *Reader) emHeaderXCDR1() (EMHeaderResult, error) {
	if err := r.padTo(4); err != nil {
		return EMHeaderResult{}, err
	}

	tag, err := r.Uint16()
	if err != nil {
		return EMHeaderResult{}, err
	}

	mu := tag&mustUnderstandXCDR1 != 0
	pid := tag &^ mustUnderstandXCDR1

	var res EMHeaderResult
	res.MustUnderstand = mu

	if pid == ExtendedPID {
		hdrLen, err := r.Uint16()
		if err != nil {
			return EMHeaderResult{}, err
		}
		if hdrLen != 8 {
			return EMHeaderResult{}, fmt.Errorf("%w: extended PID header length %d", errs.ErrIntegrityViolation, hdrLen)
		}

		id, err := r.Uint32()
		if err != nil {
			return EMHeaderResult{}, err
		}

		size, err := r.Uint32()
		if err != nil {
			return EMHeaderResult{}, err
		}

		res.ID = id
		res.ObjectSize = int(size)
	} else {
		size, err := r.Uint16()
		if err != nil {
			return EMHeaderResult{}, err
		}

		res.ID = uint32(pid)
		res.ObjectSize = int(size)
	}

	r.origin = r.offset

	return res, nil
}

func (r *Reader) emHeaderXCDR2() (EMHeaderResult, error) {
	raw, err := r.Uint32()
	if err != nil {
		return EMHeaderResult{}, err
	}

	mu := raw&mustUnderstandXCDR2 != 0
	lc := LengthCode((raw >> 28) & 0x7) //nolint:gosec
	id := raw & maxMemberIDXCDR2

	res := EMHeaderResult{MustUnderstand: mu, ID: id, ReadRaw: lc.readRaw()}

	switch lc {
	case LC0, LC1, LC2, LC3:
		res.ObjectSize = fixedSizes[lc]
	case LC4:
		nextInt, err := r.Uint32()
		if err != nil {
			return EMHeaderResult{}, err
		}
		res.ObjectSize = objectSizeFromNextInt(lc, nextInt)
	default:
		// LC5-7: NEXTINT is reused as the first four bytes of the member's
		// serialized form, so it must stay unconsumed for the caller to
		// re-read as that leading field.
		nextInt, err := r.peekUint32()
		if err != nil {
			return EMHeaderResult{}, err
		}
		res.ObjectSize = objectSizeFromNextInt(lc, nextInt)
	}

	return res, nil
}

// SentinelHeader consumes and validates a SENTINEL_PID/0 pair in XCDR1. No-op under
// XCDR2.
func (r *Reader) SentinelHeader() error {
	if r.xcdr2 {
		return nil
	}

	if err := r.padTo(4); err != nil {
		return err
	}

	pid, err := r.Uint16()
	if err != nil {
		return err
	}
	if pid != SentinelPID {
		return fmt.Errorf("%w: expected sentinel PID, got 0x%04X", errs.ErrIntegrityViolation, pid)
	}

	zero, err := r.Uint16()
	if err != nil {
		return err
	}
	if zero != 0 {
		return fmt.Errorf("%w: sentinel reserved field not zero", errs.ErrIntegrityViolation)
	}

	return nil
}

// fastPathOK reports whether a typed-array read of n elements may take the bulk-copy
// fast path: the stream's endianness must match the host's, and there must be enough
// elements to amortize the alignment cost.
func (r *Reader) fastPathOK(n int) bool {
	return n >= BufferCopyThreshold && endian.CompareNativeEndian(r.engine)
}

// Uint8Array reads a byte sequence. If readLength, a SequenceLength prefix is read
// first; otherwise n elements are read. The returned slice aliases the Reader's input
// buffer.
func (r *Reader) Uint8Array(n int, readLength bool) ([]uint8, error) {
	if readLength {
		var err error
		n, err = r.SequenceLength()
		if err != nil {
			return nil, err
		}
	}

	if err := r.ensure(n); err != nil {
		return nil, err
	}

	v := r.buf[r.offset : r.offset+n]
	r.offset += n

	return v, nil
}

// Int8Array reads a signed byte sequence, mirroring Uint8Array.
func (r *Reader) Int8Array(n int, readLength bool) ([]int8, error) {
	raw, err := r.Uint8Array(n, readLength)
	if err != nil {
		return nil, err
	}

	out := make([]int8, len(raw))
	for i, b := range raw {
		out[i] = int8(b)
	}

	return out, nil
}

// Uint16Array reads a uint16 sequence, aligned to 2 bytes. If readLength, a
// SequenceLength prefix is read first. Takes the fast path (one alignment and bounds check
// for the whole run) when the stream is host-endian and n >= BUFFER_COPY_THRESHOLD;
// otherwise decodes element-by-element via Uint16. Either way the result is a freshly
// allocated slice that does not alias the input buffer.
func (r *Reader) Uint16Array(n int, readLength bool) ([]uint16, error) {
	if readLength {
		var err error
		n, err = r.SequenceLength()
		if err != nil {
			return nil, err
		}
	}

	if err := r.padTo(2); err != nil {
		return nil, err
	}
	if err := r.ensure(n * 2); err != nil {
		return nil, err
	}

	out := make([]uint16, n)
	if r.fastPathOK(n) {
		src := r.buf[r.offset : r.offset+n*2]
		for i := range out {
			out[i] = r.engine.Uint16(src[i*2:])
		}
		r.offset += n * 2

		return out, nil
	}

	for i := range out {
		v, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

// Int16Array reads an int16 sequence, mirroring Uint16Array.
func (r *Reader) Int16Array(n int, readLength bool) ([]int16, error) {
	raw, err := r.Uint16Array(n, readLength)
	if err != nil {
		return nil, err
	}

	out := make([]int16, len(raw))
	for i, v := range raw {
		out[i] = int16(v)
	}

	return out, nil
}

// Uint32Array reads a uint32 sequence, aligned to 4 bytes, mirroring Uint16Array's
// fast-path rules.
func (r *Reader) Uint32Array(n int, readLength bool) ([]uint32, error) {
	if readLength {
		var err error
		n, err = r.SequenceLength()
		if err != nil {
			return nil, err
		}
	}

	if err := r.padTo(4); err != nil {
		return nil, err
	}
	if err := r.ensure(n * 4); err != nil {
		return nil, err
	}

	out := make([]uint32, n)
	if r.fastPathOK(n) {
		src := r.buf[r.offset : r.offset+n*4]
		for i := range out {
			out[i] = r.engine.Uint32(src[i*4:])
		}
		r.offset += n * 4

		return out, nil
	}

	for i := range out {
		v, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

// Int32Array reads an int32 sequence, mirroring Uint32Array.
func (r *Reader) Int32Array(n int, readLength bool) ([]int32, error) {
	raw, err := r.Uint32Array(n, readLength)
	if err != nil {
		return nil, err
	}

	out := make([]int32, len(raw))
	for i, v := range raw {
		out[i] = int32(v)
	}

	return out, nil
}

// Float32Array reads a float32 sequence, mirroring Uint32Array.
func (r *Reader) Float32Array(n int, readLength bool) ([]float32, error) {
	raw, err := r.Uint32Array(n, readLength)
	if err != nil {
		return nil, err
	}

	out := make([]float32, len(raw))
	for i, v := range raw {
		out[i] = math.Float32frombits(v)
	}

	return out, nil
}

// Uint64Array reads a uint64 sequence, aligned to 8 bytes under XCDR1 or 4 under XCDR2,
// mirroring Uint16Array's fast-path rules.
func (r *Reader) Uint64Array(n int, readLength bool) ([]uint64, error) {
	if readLength {
		var err error
		n, err = r.SequenceLength()
		if err != nil {
			return nil, err
		}
	}

	width := r.align64()
	if err := r.padTo(width); err != nil {
		return nil, err
	}
	if err := r.ensure(n * 8); err != nil {
		return nil, err
	}

	out := make([]uint64, n)
	if r.fastPathOK(n) {
		src := r.buf[r.offset : r.offset+n*8]
		for i := range out {
			out[i] = r.engine.Uint64(src[i*8:])
		}
		r.offset += n * 8

		return out, nil
	}

	for i := range out {
		v, err := r.Uint64()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

// Int64Array reads an int64 sequence, mirroring Uint64Array.
func (r *Reader) Int64Array(n int, readLength bool) ([]int64, error) {
	raw, err := r.Uint64Array(n, readLength)
	if err != nil {
		return nil, err
	}

	out := make([]int64, len(raw))
	for i, v := range raw {
		out[i] = int64(v)
	}

	return out, nil
}

// Float64Array reads a float64 sequence, mirroring Uint64Array.
func (r *Reader) Float64Array(n int, readLength bool) ([]float64, error) {
	raw, err := r.Uint64Array(n, readLength)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = math.Float64frombits(v)
	}

	return out, nil
}

// Kind returns the Reader's encapsulation kind.
func (r *Reader) Kind() Kind {
	return r.kind
}

// Offset returns the reader's current cursor position.
func (r *Reader) Offset() int {
	return r.offset
}

// Remaining returns the number of unread bytes in the input buffer.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.offset
}
