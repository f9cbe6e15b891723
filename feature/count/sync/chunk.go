package sync

import "fmt"

// DefaultChunkSize is how many characters of the base-encoded payload fit
// in one wireless write. The transport's single-write payload is bounded,
// so larger packets travel as a numbered chunk set.
const DefaultChunkSize = 180

// TypeEventBatchChunk is the type discriminator on a wireless chunk frame.
const TypeEventBatchChunk = "event_batch_chunk"

// Chunk is one numbered slice of a base-encoded packet. The receiver can
// reassemble chunks arriving out of order or retried.
type Chunk struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
	Total int    `json:"total"`
	Chunk string `json:"chunk"`
}

// SplitChunks slices an encoded payload into fixed-size chunks. A size of
// zero or less falls back to DefaultChunkSize. Even an empty payload yields
// one (empty) chunk so the receiver always observes a complete set.
func SplitChunks(encoded string, size int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}

	total := (len(encoded) + size - 1) / size
	if total == 0 {
		total = 1
	}

	chunks := make([]Chunk, 0, total)
	for i := 0; i < total; i++ {
		end := (i + 1) * size
		if end > len(encoded) {
			end = len(encoded)
		}
		chunks = append(chunks, Chunk{
			Type:  TypeEventBatchChunk,
			Index: i,
			Total: total,
			Chunk: encoded[i*size : end],
		})
	}
	return chunks
}

// Assembler reassembles a chunk set into the original encoded payload.
// Chunks may arrive in any order; a duplicate index overwrites its slot
// rather than duplicating data. The payload is complete once every index
// 0..total-1 has been observed at least once.
type Assembler struct {
	total int
	parts map[int]string
}

// NewAssembler creates an empty assembler.
func NewAssembler() *Assembler {
	return &Assembler{parts: make(map[int]string)}
}

// Add folds one chunk in and reports whether the payload is now complete.
func (a *Assembler) Add(c Chunk) (bool, error) {
	if c.Type != TypeEventBatchChunk {
		return false, &ValidationError{Reason: fmt.Sprintf("unexpected chunk type %q", c.Type)}
	}
	if c.Total <= 0 {
		return false, &ValidationError{Reason: "chunk total must be positive"}
	}
	if c.Index < 0 || c.Index >= c.Total {
		return false, &ValidationError{Reason: fmt.Sprintf("chunk index %d out of range 0..%d", c.Index, c.Total-1)}
	}
	if a.total != 0 && a.total != c.Total {
		return false, &ValidationError{Reason: fmt.Sprintf("chunk total changed mid-transfer (%d -> %d)", a.total, c.Total)}
	}

	a.total = c.Total
	a.parts[c.Index] = c.Chunk
	return a.Complete(), nil
}

// Complete reports whether every chunk index has been observed.
func (a *Assembler) Complete() bool {
	return a.total > 0 && len(a.parts) == a.total
}

// Payload returns the reassembled encoded payload. It fails if the chunk
// set is still incomplete.
func (a *Assembler) Payload() (string, error) {
	if !a.Complete() {
		return "", &ValidationError{Reason: fmt.Sprintf("chunk set incomplete (%d of %d)", len(a.parts), a.total)}
	}
	var out string
	for i := 0; i < a.total; i++ {
		out += a.parts[i]
	}
	return out, nil
}

// Reset discards any partially received chunks, e.g. after an aborted
// transfer. The next transfer must resend the full chunk set.
func (a *Assembler) Reset() {
	a.total = 0
	a.parts = make(map[int]string)
}
