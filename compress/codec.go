package compress

import "fmt"

// Compressor compresses a byte slice, typically the output of Writer.Data() for a
// finished CDR sample a host application wants to store or retransmit at rest.
type Compressor interface {
	// Compress compresses data and returns the compressed result.
	//
	// Memory management:
	//   - Returned slice is owned by the caller; it is newly allocated, except that the
	//     no-op codec returns the input slice itself
	//   - Input slice is not modified
	Compress(data []byte) ([]byte, error)
}

// Decompressor is the inverse of Compressor.
type Decompressor interface {
	// Decompress decompresses data and returns the original result.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// Algorithm identifies a compression algorithm a Codec may implement.
type Algorithm uint8

const (
	NoCompression Algorithm = iota
	Zstd
	S2
	LZ4
)

// String implements fmt.Stringer.
func (a Algorithm) String() string {
	switch a {
	case NoCompression:
		return "none"
	case Zstd:
		return "zstd"
	case S2:
		return "s2"
	case LZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// CreateCodec is a factory function that creates a Codec for the given algorithm.
// target describes the caller's intended use, surfaced in the error message for an
// unrecognized algorithm.
func CreateCodec(algorithm Algorithm, target string) (Codec, error) {
	switch algorithm {
	case NoCompression:
		return NewNoOpCodec(), nil
	case Zstd:
		return NewZstdCodec(), nil
	case S2:
		return NewS2Codec(), nil
	case LZ4:
		return NewLZ4Codec(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression: %s", target, algorithm)
	}
}

var builtinCodecs = map[Algorithm]Codec{
	NoCompression: NewNoOpCodec(),
	Zstd:          NewZstdCodec(),
	S2:            NewS2Codec(),
	LZ4:           NewLZ4Codec(),
}

// GetCodec retrieves a built-in Codec for the given algorithm.
func GetCodec(algorithm Algorithm) (Codec, error) {
	if codec, ok := builtinCodecs[algorithm]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression algorithm: %s", algorithm)
}
