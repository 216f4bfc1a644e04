// Package compress provides optional compression codecs for already-serialized CDR
// byte streams.
//
// It sits above the cdr package, not inside it: a cdr.Writer never compresses what it
// writes, and a cdr.Reader never expects compressed input. This package exists for
// callers that want to store or retransmit a finished Writer.Data() buffer more
// compactly — a ROS 2 bag recorder writing samples to disk, or an RTPS reliability
// cache holding unacknowledged samples for retransmission.
//
// # Algorithms
//
//   - None (NewNoOpCodec) — passes data through unmodified; useful as a baseline or
//     when the payload is already compressed upstream.
//   - Zstd (NewZstdCodec) — best compression ratio, moderate speed. Pure Go
//     (klauspost/compress/zstd), so it carries no cgo dependency even in an embedded
//     DDS deployment.
//   - S2 (NewS2Codec) — a Snappy-compatible format (klauspost/compress/s2) favoring
//     speed over ratio.
//   - LZ4 (NewLZ4Codec) — very fast decompression (pierrec/lz4/v4), moderate
//     compression.
//
// # Usage
//
//	codec := compress.NewZstdCodec()
//	compressed, _ := codec.Compress(writer.Data())
//	// ... store or transmit compressed ...
//	original, _ := codec.Decompress(compressed)
//	reader, _ := cdr.NewReader(original)
//
// CreateCodec and GetCodec select a Codec by Algorithm at runtime, for callers whose
// compression choice is itself configuration rather than a compile-time constant.
package compress
