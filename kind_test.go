package cdr

import (
	"testing"

	"github.com/Lichtblick-Suite/cdr/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_Lookup(t *testing.T) {
	tests := []struct {
		kind            Kind
		littleEndian    bool
		isXCDR2         bool
		isDelimited     bool
		isParameterList bool
	}{
		{KindCDR_BE, false, false, false, false},
		{KindCDR_LE, true, false, false, false},
		{KindPLCDR_BE, false, false, false, true},
		{KindPLCDR_LE, true, false, false, true},
		{KindCDR2_BE, false, true, false, false},
		{KindCDR2_LE, true, true, false, false},
		{KindPLCDR2_BE, false, true, false, true},
		{KindPLCDR2_LE, true, true, false, true},
		{KindDCDR2_BE, false, true, true, false},
		{KindDCDR2_LE, true, true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			info, err := tt.kind.lookup()
			require.NoError(t, err)
			assert.Equal(t, tt.littleEndian, info.littleEndian)
			assert.Equal(t, tt.isXCDR2, info.isXCDR2)
			assert.Equal(t, tt.isDelimited, info.isDelimited)
			assert.Equal(t, tt.isParameterList, info.isParameterList)
			assert.True(t, tt.kind.Valid())
		})
	}
}

func TestKind_Unknown(t *testing.T) {
	k := Kind(0xFF)
	assert.False(t, k.Valid())

	_, err := k.lookup()
	assert.ErrorIs(t, err, errs.ErrInvalidEncapsulation)

	le, ok := k.LittleEndian()
	assert.False(t, le)
	assert.False(t, ok)

	assert.Equal(t, "Unknown", k.String())
}

func TestKind_AccessorHelpers(t *testing.T) {
	le, ok := KindPLCDR2_LE.LittleEndian()
	require.True(t, ok)
	assert.True(t, le)

	xcdr2, ok := KindPLCDR2_LE.IsXCDR2()
	require.True(t, ok)
	assert.True(t, xcdr2)

	pl, ok := KindPLCDR2_LE.IsParameterList()
	require.True(t, ok)
	assert.True(t, pl)

	d, ok := KindDCDR2_BE.IsDelimited()
	require.True(t, ok)
	assert.True(t, d)
}
