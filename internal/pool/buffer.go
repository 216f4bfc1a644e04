// Package pool provides a pooled, growable byte buffer used internally by the cdr Writer.
//
// It is the Writer's sole allocator: every reallocation goes through Buffer.Grow, and
// short-lived Writers can return their backing array to a shared sync.Pool via Put/Get
// so that high-frequency callers (one Writer per outgoing RTPS sample, for example) don't
// pay for a fresh allocation on every sample.
package pool

import "sync"

// DefaultCapacity is the initial buffer size used when a cdr.Writer is not constructed
// with an explicit buffer or size.
const DefaultCapacity = 16

// Buffer is a growable byte slice with amortized doubling growth.
//
// It is not safe for concurrent use; a cdr.Writer owns exactly one Buffer for its
// lifetime.
type Buffer struct {
	// B is the underlying byte slice. Exported so callers that need a raw slice to
	// hand to encoding/binary helpers can take it directly without a copy.
	B []byte
}

// NewBuffer creates a new Buffer with the specified initial capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Buffer{B: make([]byte, 0, capacity)}
}

// WrapBuffer adopts a caller-supplied slice as the backing store, starting empty.
// The caller retains no ownership guarantee once writes begin: Grow may reallocate
// and abandon the original array.
func WrapBuffer(buf []byte) *Buffer {
	return &Buffer{B: buf[:0]}
}

// Bytes returns the buffer's current contents.
func (b *Buffer) Bytes() []byte {
	return b.B
}

// Len returns the number of bytes currently held in the buffer.
func (b *Buffer) Len() int {
	return len(b.B)
}

// Cap returns the buffer's current capacity.
func (b *Buffer) Cap() int {
	return cap(b.B)
}

// Reset empties the buffer while retaining its backing array for reuse.
func (b *Buffer) Reset() {
	b.B = b.B[:0]
}

// Slice returns the sub-slice [start:end) of the buffer's backing array. Panics if the
// indices fall outside the current capacity.
func (b *Buffer) Slice(start, end int) []byte {
	if start < 0 || end < start || end > cap(b.B) {
		panic("pool: Slice: invalid indices")
	}

	return b.B[start:end]
}

// SetLength sets the buffer's logical length to n. Panics if n is negative or exceeds
// capacity.
func (b *Buffer) SetLength(n int) {
	if n < 0 || n > cap(b.B) {
		panic("pool: SetLength: invalid length")
	}
	b.B = b.B[:n]
}

// Extend grows the logical length by n bytes without reallocating, returning false if
// there is insufficient spare capacity.
func (b *Buffer) Extend(n int) bool {
	curLen := len(b.B)
	if cap(b.B)-curLen < n {
		return false
	}

	b.B = b.B[:curLen+n]

	return true
}

// ExtendOrGrow extends the logical length by n bytes, reallocating first if necessary.
func (b *Buffer) ExtendOrGrow(n int) {
	if b.Extend(n) {
		return
	}

	start := len(b.B)
	b.Grow(n)
	b.B = b.B[:start+n]
}

// Grow ensures the buffer can accept at least requiredBytes more bytes without a further
// reallocation. If the current capacity already suffices, Grow does nothing.
//
// Growth policy: double the current capacity, floored at whatever requiredBytes actually
// demands, so that a single large write never needs more than one reallocation and
// repeated small writes amortize to O(1) each.
func (b *Buffer) Grow(requiredBytes int) {
	available := cap(b.B) - len(b.B)
	if available >= requiredBytes {
		return
	}

	needed := len(b.B) + requiredBytes
	newCap := cap(b.B) * 2
	if newCap < needed {
		newCap = needed
	}

	newBuf := make([]byte, len(b.B), newCap)
	copy(newBuf, b.B)
	b.B = newBuf
}

// Write appends data to the buffer, growing it as needed. It always returns
// len(data), nil, satisfying io.Writer.
func (b *Buffer) Write(data []byte) (int, error) {
	b.Grow(len(data))
	b.B = append(b.B, data...)

	return len(data), nil
}

// BufferPool pools Buffers keyed by a single default size, to minimize allocations for
// callers that construct and discard many Writers.
type BufferPool struct {
	pool sync.Pool
}

// NewBufferPool creates a BufferPool whose fresh Buffers start at defaultSize capacity.
func NewBufferPool(defaultSize int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() any { return NewBuffer(defaultSize) },
		},
	}
}

// Get retrieves a Buffer from the pool, or allocates a fresh one.
func (p *BufferPool) Get() *Buffer {
	buf, _ := p.pool.Get().(*Buffer)
	return buf
}

// Put resets buf and returns it to the pool for reuse.
func (p *BufferPool) Put(buf *Buffer) {
	if buf == nil {
		return
	}

	buf.Reset()
	p.pool.Put(buf)
}

var defaultPool = NewBufferPool(DefaultCapacity)

// Get retrieves a Buffer from the package-level default pool.
func Get() *Buffer { return defaultPool.Get() }

// Put returns a Buffer to the package-level default pool.
func Put(buf *Buffer) { defaultPool.Put(buf) }
