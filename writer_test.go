package cdr

import (
	"testing"

	"github.com/Lichtblick-Suite/cdr/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLEWriter(t *testing.T, kind Kind) *Writer {
	t.Helper()
	w, err := NewWriter(WithKind(kind))
	require.NoError(t, err)
	return w
}

func TestWriter_EncapsulationHeader(t *testing.T) {
	w := newLEWriter(t, KindCDR_LE)
	assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x00}, w.Data())
	assert.Equal(t, 4, w.Size())
	assert.Equal(t, KindCDR_LE, w.Kind())
}

func TestWriter_Uint8ArrayWithLength(t *testing.T) {
	w := newLEWriter(t, KindCDR_LE)
	w.Uint8Array([]uint8{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, true)

	want := []byte{
		0x00, 0x01, 0x00, 0x00, // encapsulation header
		0x0B, 0x00, 0x00, 0x00, // sequence length = 11
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11,
	}
	assert.Equal(t, want, w.Data())
}

func TestWriter_Uint8ThenFloat64_XCDR1Aligns8(t *testing.T) {
	w := newLEWriter(t, KindCDR_LE)
	w.Uint8(1)
	w.Float64(1.0)

	want := []byte{
		0x00, 0x01, 0x00, 0x00, // header
		0x01, 0, 0, 0, 0, 0, 0, 0, // uint8(1) + 7 padding bytes (align 8)
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xF0, 0x3F, // float64(1.0) LE
	}
	assert.Equal(t, want, w.Data())
}

func TestWriter_Uint8ThenFloat64_XCDR2Aligns4(t *testing.T) {
	w := newLEWriter(t, KindCDR2_LE)
	w.Uint8(1)
	w.Float64(1.0)

	want := []byte{
		0x00, 0x11, 0x00, 0x00, // header
		0x01, 0, 0, 0, // uint8(1) + 3 padding bytes (align 4)
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xF0, 0x3F,
	}
	assert.Equal(t, want, w.Data())
}

func TestWriter_EMHeader_XCDR1Short(t *testing.T) {
	w := newLEWriter(t, KindPLCDR_LE)
	require.NoError(t, w.EMHeader(true, 0x0012, 4, EMHeaderOptions{}))

	got := w.Data()[4:8]
	assert.Equal(t, []byte{0x12, 0x40, 0x04, 0x00}, got)
	assert.Equal(t, 8, w.offset)
	assert.Equal(t, 8, w.origin, "origin resets to offset after a member header")
}

func TestWriter_EMHeader_XCDR1Extended(t *testing.T) {
	w := newLEWriter(t, KindPLCDR_LE)
	require.NoError(t, w.EMHeader(true, 0x40000000, 16, EMHeaderOptions{}))

	got := w.Data()[4:]
	assert.Equal(t, []byte{0x01, 0x7F, 0x08, 0x00, 0x00, 0x00, 0x00, 0x40, 0x10, 0x00, 0x00, 0x00}, got)
}

func TestWriter_EMHeader_XCDR2ExplicitLC6(t *testing.T) {
	w := newLEWriter(t, KindPLCDR2_LE)
	require.NoError(t, w.EMHeader(false, 0x1234, 12, EMHeaderOptions{LengthCode: LC6, Explicit: true}))

	got := w.Data()[4:]
	assert.Equal(t, []byte{0x34, 0x12, 0x00, 0x60, 0x03, 0x00, 0x00, 0x00}, got)
}

func TestWriter_EMHeader_XCDR2IDTooLarge(t *testing.T) {
	w := newLEWriter(t, KindPLCDR2_LE)
	err := w.EMHeader(false, maxMemberIDXCDR2+1, 4, EMHeaderOptions{})
	assert.ErrorIs(t, err, errs.ErrIdTooLarge)
}

func TestWriter_EMHeader_DuplicateMemberID(t *testing.T) {
	w := newLEWriter(t, KindPLCDR2_LE)
	require.NoError(t, w.EMHeader(false, 1, 4, EMHeaderOptions{}))
	err := w.EMHeader(false, 1, 4, EMHeaderOptions{})
	assert.ErrorIs(t, err, errs.ErrDuplicateMemberID)
}

func TestWriter_SentinelHeader_XCDR1(t *testing.T) {
	w := newLEWriter(t, KindPLCDR_LE)
	w.SentinelHeader()

	assert.Equal(t, []byte{0x02, 0x3F, 0x00, 0x00}, w.Data()[4:])
}

func TestWriter_SentinelHeader_XCDR2NoOp(t *testing.T) {
	w := newLEWriter(t, KindPLCDR2_LE)
	w.SentinelHeader()

	assert.Equal(t, 4, w.Size())
}

func TestWriter_SentinelResetsMemberTracker(t *testing.T) {
	w := newLEWriter(t, KindPLCDR_LE)
	require.NoError(t, w.EMHeader(false, 1, 4, EMHeaderOptions{}))
	w.SentinelHeader()
	require.NoError(t, w.EMHeader(false, 1, 4, EMHeaderOptions{}), "id 1 may be reused after a new sentinel scope")
}

func TestWriter_DHeaderResetsMemberTracker(t *testing.T) {
	w := newLEWriter(t, KindPLCDR2_LE)
	w.DHeader(4)
	require.NoError(t, w.EMHeader(false, 0, 4, EMHeaderOptions{}))
	w.DHeader(4)
	require.NoError(t, w.EMHeader(false, 0, 4, EMHeaderOptions{}), "id 0 may be reused in a new DHEADER-delimited aggregate under XCDR2")
}

func TestWriter_String(t *testing.T) {
	w := newLEWriter(t, KindCDR_LE)
	w.String("abc", true)

	assert.Equal(t, []byte{0x04, 0x00, 0x00, 0x00, 'a', 'b', 'c', 0x00}, w.Data()[4:])
}

func TestWriter_String_NonASCII_ByteLengthCorrect(t *testing.T) {
	w := newLEWriter(t, KindCDR_LE)
	s := "héllo" // 6 UTF-8 bytes, 5 code units
	w.String(s, true)

	body := w.Data()[4:]
	length := uint32(body[0]) | uint32(body[1])<<8 | uint32(body[2])<<16 | uint32(body[3])<<24
	assert.Equal(t, uint32(len(s)+1), length, "length must be the true UTF-8 byte length plus terminator")
}

func TestWriter_GrowsBeyondInitialSize(t *testing.T) {
	w, err := NewWriter(WithSize(1))
	require.NoError(t, err)

	w.Uint8Array(make([]uint8, 64), false)
	assert.Equal(t, 4+64, w.Size())
}

func TestWriter_ReleasePanicsOnReuse(t *testing.T) {
	w := newLEWriter(t, KindCDR_LE)
	w.Release()

	assert.Panics(t, func() { w.Uint8(1) })
}

func TestWriter_BufferAndSizeMutuallyExclusive(t *testing.T) {
	_, err := NewWriter(WithBuffer(make([]byte, 16)), WithSize(16))
	assert.ErrorIs(t, err, errs.ErrBufferAndSizeBothSet)
}

func TestWriter_FastPathAndSlowPathAgree(t *testing.T) {
	values := make([]uint32, 20)
	for i := range values {
		values[i] = uint32(i * 7)
	}

	fast := newLEWriter(t, KindCDR_LE)
	fast.Uint32Array(values, true)

	slow := newLEWriter(t, KindCDR_LE)
	slow.SequenceLength(len(values))
	for _, v := range values {
		slow.Uint32(v)
	}

	assert.Equal(t, fast.Data(), slow.Data())
}
