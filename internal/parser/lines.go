package parser

import "sort"

// LineIndex maps a byte offset to a 1-indexed line number in O(log N)
// via a precomputed table of newline positions (§4.A).
type LineIndex struct {
	// newlineOffsets[i] is the byte offset of the i-th '\n' in the file.
	newlineOffsets []int
	totalLines     int
}

// NewLineIndex builds the prefix table for source.
func NewLineIndex(source []byte) *LineIndex {
	idx := &LineIndex{}
	for i, b := range source {
		if b == '\n' {
			idx.newlineOffsets = append(idx.newlineOffsets, i)
		}
	}
	idx.totalLines = len(idx.newlineOffsets) + 1
	if len(source) > 0 && source[len(source)-1] == '\n' {
		// A trailing newline doesn't start a new non-empty line.
		idx.totalLines--
		if idx.totalLines == 0 {
			idx.totalLines = 1
		}
	}
	return idx
}

// LineAt returns the 1-indexed line number containing byte offset off.
func (idx *LineIndex) LineAt(off int) int {
	// Number of newlines strictly before off is the count of lines
	// fully preceding the one containing off.
	n := sort.Search(len(idx.newlineOffsets), func(i int) bool {
		return idx.newlineOffsets[i] >= off
	})
	return n + 1
}

// TotalLines returns the file's line count, used to bound line ranges
// per invariant 6 (§3.3).
func (idx *LineIndex) TotalLines() int {
	return idx.totalLines
}
