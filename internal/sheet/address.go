package sheet

import (
	"strconv"
	"strings"
)

// SplitAddress splits a cell address like "AB12" into its column-letter and
// row-number parts. ok is false if addr carries no trailing digits.
func SplitAddress(addr string) (letters string, row int, ok bool) {
	i := 0
	for i < len(addr) && (addr[i] < '0' || addr[i] > '9') {
		i++
	}
	if i == 0 || i == len(addr) {
		return "", 0, false
	}
	n, err := strconv.Atoi(addr[i:])
	if err != nil {
		return "", 0, false
	}
	return addr[:i], n, true
}

// ColumnIndex converts a column-letter string to a 1-based column number
// using the base-26 convention where A=1 and there is no zero digit.
func ColumnIndex(letters string) int {
	n := 0
	for _, r := range strings.ToUpper(letters) {
		if r < 'A' || r > 'Z' {
			continue
		}
		n = n*26 + int(r-'A') + 1
	}
	return n
}

// ColumnLetters converts a 1-based column number back to its letter
// representation, the inverse of ColumnIndex.
func ColumnLetters(n int) string {
	if n <= 0 {
		return ""
	}
	var buf []byte
	for n > 0 {
		n--
		buf = append([]byte{byte('A' + n%26)}, buf...)
		n /= 26
	}
	return string(buf)
}

// ExpandRange expands a range reference such as "A3:C12" into every address
// it covers, in column-major order: A3..A12, B3..B12, C3..C12. A reference
// with no colon is treated as a single-cell range.
func ExpandRange(ref string) []string {
	parts := strings.SplitN(ref, ":", 2)
	startLetters, startRow, ok1 := SplitAddress(parts[0])
	if !ok1 {
		return nil
	}
	endLetters, endRow := startLetters, startRow
	if len(parts) == 2 {
		var ok2 bool
		endLetters, endRow, ok2 = SplitAddress(parts[1])
		if !ok2 {
			return nil
		}
	}

	startCol := ColumnIndex(startLetters)
	endCol := ColumnIndex(endLetters)
	if startCol > endCol {
		startCol, endCol = endCol, startCol
	}
	if startRow > endRow {
		startRow, endRow = endRow, startRow
	}

	var out []string
	for col := startCol; col <= endCol; col++ {
		letters := ColumnLetters(col)
		for row := startRow; row <= endRow; row++ {
			out = append(out, letters+strconv.Itoa(row))
		}
	}
	return out
}
