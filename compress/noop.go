package compress

// noOpCodec bypasses compression, returning the input unchanged. Useful as a baseline
// or for data that is already compressed upstream.
type noOpCodec struct{}

var _ Codec = noOpCodec{}

// NewNoOpCodec creates a Codec that passes data through unmodified.
func NewNoOpCodec() Codec {
	return noOpCodec{}
}

// Compress returns data as-is; the returned slice aliases the input.
func (c noOpCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data as-is; the returned slice aliases the input.
func (c noOpCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
