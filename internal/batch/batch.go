// Package batch splits ordered record sequences into bounded chunks.
package batch

// DefaultChunkSize is the number of records written per transaction.
const DefaultChunkSize = 50

// Chunk partitions items into consecutive chunks of at most size elements.
// Order is preserved within and across chunks and the last chunk may be shorter.
// An empty input yields no chunks. A size below one puts everything in a single chunk.
//
// The returned chunks share the backing array of items.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size < 1 || size > len(items) {
		size = len(items)
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}
