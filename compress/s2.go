package compress

import "github.com/klauspost/compress/s2"

// s2Codec compresses with S2, a Snappy-compatible format tuned for speed over ratio.
type s2Codec struct{}

var _ Codec = s2Codec{}

// NewS2Codec creates a Codec backed by klauspost/compress/s2.
func NewS2Codec() Codec {
	return s2Codec{}
}

// Compress compresses data using S2.
func (c s2Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress decompresses S2-compressed data.
func (c s2Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}
