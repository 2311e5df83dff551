package observation

import "github.com/threatflux/datahub/internal/datahub/sample"

// ringBuffer is Observation's fixed-capacity FIFO sample buffer (spec.md
// §3). Appending past capacity evicts the oldest element.
type ringBuffer struct {
	capacity int
	items    []sample.Sample
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{capacity: capacity}
}

// Resize changes the buffer's capacity, dropping the oldest elements if the
// new capacity is smaller than the current length.
func (b *ringBuffer) Resize(capacity int) {
	b.capacity = capacity
	if capacity <= 0 {
		b.items = nil
		return
	}
	if len(b.items) > capacity {
		b.items = append([]sample.Sample(nil), b.items[len(b.items)-capacity:]...)
	}
}

// Append adds s to the buffer, evicting the oldest element if at capacity.
func (b *ringBuffer) Append(s sample.Sample) {
	if b.capacity <= 0 {
		return
	}
	if len(b.items) >= b.capacity {
		b.items = append(b.items[1:], s)
		return
	}
	b.items = append(b.items, s)
}

// Len reports the number of samples currently buffered.
func (b *ringBuffer) Len() int { return len(b.items) }

// Snapshot returns a copy of the buffered samples, oldest first.
func (b *ringBuffer) Snapshot() []sample.Sample {
	out := make([]sample.Sample, len(b.items))
	copy(out, b.items)
	return out
}
