package cdr

import (
	"testing"

	"github.com/Lichtblick-Suite/cdr/errs"
	"github.com/Lichtblick-Suite/cdr/internal/strcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_TooShortBuffer(t *testing.T) {
	_, err := NewReader([]byte{0x00, 0x01, 0x00})
	assert.ErrorIs(t, err, errs.ErrBufferTooSmall)
}

func TestReader_UnknownKind(t *testing.T) {
	_, err := NewReader([]byte{0x00, 0xFF, 0x00, 0x00})
	assert.ErrorIs(t, err, errs.ErrInvalidEncapsulation)
}

func TestReader_RoundTrip_Scalars(t *testing.T) {
	w := newLEWriter(t, KindCDR_LE)
	w.Int8(-5)
	w.Uint8(200)
	w.Int16(-1000)
	w.Uint16(40000)
	w.Int32(-70000)
	w.Uint32(4000000000)
	w.Int64(-9000000000000000000)
	w.Uint64(18000000000000000000)
	w.Float32(3.5)
	w.Float64(2.718281828)

	r, err := NewReader(w.Data())
	require.NoError(t, err)

	i8, err := r.Int8()
	require.NoError(t, err)
	assert.Equal(t, int8(-5), i8)

	u8, err := r.Uint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(200), u8)

	i16, err := r.Int16()
	require.NoError(t, err)
	assert.Equal(t, int16(-1000), i16)

	u16, err := r.Uint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(40000), u16)

	i32, err := r.Int32()
	require.NoError(t, err)
	assert.Equal(t, int32(-70000), i32)

	u32, err := r.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(4000000000), u32)

	i64, err := r.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(-9000000000000000000), i64)

	u64, err := r.Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(18000000000000000000), u64)

	f32, err := r.Float32()
	require.NoError(t, err)
	assert.InDelta(t, float32(3.5), f32, 0)

	f64, err := r.Float64()
	require.NoError(t, err)
	assert.InDelta(t, 2.718281828, f64, 0)
}

func TestReader_Uint8ThenFloat64_XCDR1Aligns8(t *testing.T) {
	w := newLEWriter(t, KindCDR_LE)
	w.Uint8(1)
	w.Float64(1.0)

	r, err := NewReader(w.Data())
	require.NoError(t, err)

	u, err := r.Uint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), u)

	f, err := r.Float64()
	require.NoError(t, err)
	assert.Equal(t, 1.0, f)
}

func TestReader_Uint8ThenFloat64_XCDR2Aligns4(t *testing.T) {
	w := newLEWriter(t, KindCDR2_LE)
	w.Uint8(1)
	w.Float64(1.0)

	r, err := NewReader(w.Data())
	require.NoError(t, err)

	_, err = r.Uint8()
	require.NoError(t, err)

	f, err := r.Float64()
	require.NoError(t, err)
	assert.Equal(t, 1.0, f)
}

func TestReader_String(t *testing.T) {
	w := newLEWriter(t, KindCDR_LE)
	w.String("abc", true)

	r, err := NewReader(w.Data())
	require.NoError(t, err)

	s, err := r.String()
	require.NoError(t, err)
	assert.Equal(t, "abc", s)
}

func TestReader_String_NonASCIIRoundTrips(t *testing.T) {
	w := newLEWriter(t, KindCDR_LE)
	w.String("héllo", true)

	r, err := NewReader(w.Data())
	require.NoError(t, err)

	s, err := r.String()
	require.NoError(t, err)
	assert.Equal(t, "héllo", s)
}

func TestReader_String_MissingTerminator(t *testing.T) {
	buf := []byte{0x00, 0x01, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 'a', 'b'}
	r, err := NewReader(buf)
	require.NoError(t, err)

	_, err = r.String()
	assert.ErrorIs(t, err, errs.ErrInvalidString)
}

func TestReader_String_InvalidUTF8(t *testing.T) {
	buf := []byte{0x00, 0x01, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0xFF, 0x00}
	r, err := NewReader(buf)
	require.NoError(t, err)

	_, err = r.String()
	assert.ErrorIs(t, err, errs.ErrInvalidString)
}

func TestReader_String_UsesCache(t *testing.T) {
	w := newLEWriter(t, KindCDR_LE)
	w.String("rt/chatter", true)
	data := w.Data()

	cache := strcache.New(4)
	r1, err := NewReader(data, WithStringCache(cache))
	require.NoError(t, err)
	s1, err := r1.String()
	require.NoError(t, err)
	assert.Equal(t, "rt/chatter", s1)
	assert.Equal(t, 1, cache.Len())

	r2, err := NewReader(data, WithStringCache(cache))
	require.NoError(t, err)
	s2, err := r2.String()
	require.NoError(t, err)
	assert.Equal(t, "rt/chatter", s2)
}

func TestReader_EMHeader_XCDR1Short(t *testing.T) {
	w := newLEWriter(t, KindPLCDR_LE)
	require.NoError(t, w.EMHeader(true, 0x0012, 4, EMHeaderOptions{}))

	r, err := NewReader(w.Data())
	require.NoError(t, err)

	res, err := r.EMHeader()
	require.NoError(t, err)
	assert.True(t, res.MustUnderstand)
	assert.Equal(t, uint32(0x0012), res.ID)
	assert.Equal(t, 4, res.ObjectSize)
	assert.Equal(t, r.offset, r.origin)
}

func TestReader_EMHeader_XCDR1Extended(t *testing.T) {
	w := newLEWriter(t, KindPLCDR_LE)
	require.NoError(t, w.EMHeader(true, 0x40000000, 16, EMHeaderOptions{}))

	r, err := NewReader(w.Data())
	require.NoError(t, err)

	res, err := r.EMHeader()
	require.NoError(t, err)
	assert.True(t, res.MustUnderstand)
	assert.Equal(t, uint32(0x40000000), res.ID)
	assert.Equal(t, 16, res.ObjectSize)
}

func TestReader_EMHeader_XCDR2LC6ReadRaw(t *testing.T) {
	w := newLEWriter(t, KindPLCDR2_LE)
	require.NoError(t, w.EMHeader(false, 0x1234, 12, EMHeaderOptions{LengthCode: LC6, Explicit: true}))

	r, err := NewReader(w.Data())
	require.NoError(t, err)

	res, err := r.EMHeader()
	require.NoError(t, err)
	assert.False(t, res.MustUnderstand)
	assert.Equal(t, uint32(0x1234), res.ID)
	assert.Equal(t, 12, res.ObjectSize)
	assert.True(t, res.ReadRaw)

	// NEXTINT (the LC6-scaled object length, 3) must still be unconsumed so the
	// caller can re-read it as the member's leading 4 bytes.
	reused, err := r.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), reused)
}

func TestReader_SentinelHeader_XCDR1(t *testing.T) {
	w := newLEWriter(t, KindPLCDR_LE)
	w.SentinelHeader()

	r, err := NewReader(w.Data())
	require.NoError(t, err)
	require.NoError(t, r.SentinelHeader())
}

func TestReader_SentinelHeader_Mismatch(t *testing.T) {
	buf := []byte{0x00, 0x03, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}
	r, err := NewReader(buf)
	require.NoError(t, err)

	err = r.SentinelHeader()
	assert.ErrorIs(t, err, errs.ErrIntegrityViolation)
}

func TestReader_TypedArrays_RoundTrip(t *testing.T) {
	u8 := []uint8{1, 2, 3}
	i16 := []int16{-1, 2, -3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	u32 := []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	f64 := []float64{1.5, 2.5, 3.5, 4.5, 5.5, 6.5, 7.5, 8.5, 9.5, 10.5, 11.5}

	w := newLEWriter(t, KindCDR_LE)
	w.Uint8Array(u8, true)
	w.Int16Array(i16, true)
	w.Uint32Array(u32, true)
	w.Float64Array(f64, true)

	r, err := NewReader(w.Data())
	require.NoError(t, err)

	gotU8, err := r.Uint8Array(0, true)
	require.NoError(t, err)
	assert.Equal(t, u8, gotU8)

	gotI16, err := r.Int16Array(0, true)
	require.NoError(t, err)
	assert.Equal(t, i16, gotI16)

	gotU32, err := r.Uint32Array(0, true)
	require.NoError(t, err)
	assert.Equal(t, u32, gotU32)

	gotF64, err := r.Float64Array(0, true)
	require.NoError(t, err)
	assert.Equal(t, f64, gotF64)
}

func TestReader_BufferTooSmall(t *testing.T) {
	r, err := NewReader([]byte{0x00, 0x01, 0x00, 0x00})
	require.NoError(t, err)

	_, err = r.Uint32()
	assert.ErrorIs(t, err, errs.ErrBufferTooSmall)
}

func TestReader_EmptyArrayRoundTrips(t *testing.T) {
	w := newLEWriter(t, KindCDR_LE)
	w.Uint32Array(nil, true)

	r, err := NewReader(w.Data())
	require.NoError(t, err)

	got, err := r.Uint32Array(0, true)
	require.NoError(t, err)
	assert.Empty(t, got)
}
