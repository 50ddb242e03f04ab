package utils

import "bytes"

// ClosestRowAfter returns the smallest row key strictly greater than row.
func ClosestRowAfter(row []byte) []byte {
	nextRow := make([]byte, 0, len(row)+1)
	nextRow = append(nextRow, row...)
	nextRow = append(nextRow, 0x00)
	return nextRow
}

// PrefixStopRow returns the exclusive stop row of a scan over every key
// starting with prefix, or nil when no such bound exists (empty prefix or a
// prefix made only of 0xff bytes).
func PrefixStopRow(prefix []byte) []byte {
	for i := len(prefix) - 1; i >= 0; i-- {
		if prefix[i] != 0xff {
			stop := make([]byte, i+1)
			copy(stop, prefix[:i+1])
			stop[i]++
			return stop
		}
	}
	return nil
}

// InRange reports whether row lies in [start, stop). Empty bounds are open.
func InRange(row, start, stop []byte) bool {
	if len(start) > 0 && bytes.Compare(row, start) < 0 {
		return false
	}
	if len(stop) > 0 && bytes.Compare(row, stop) >= 0 {
		return false
	}
	return true
}
