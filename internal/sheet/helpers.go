package sheet

import (
	"encoding/xml"
	"sort"
	"strconv"
	"strings"
)

func attr(el xml.StartElement, local string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// newRowState parses a <row> start element's r/spans/hidden attributes.
func newRowState(el xml.StartElement) *rowState {
	rs := &rowState{}
	if v, ok := attr(el, "r"); ok {
		rs.num, _ = strconv.Atoi(v)
	}
	if v, ok := attr(el, "hidden"); ok {
		rs.hidden = v == "1" || strings.EqualFold(v, "true")
	}
	if v, ok := attr(el, "spans"); ok {
		// spans is sometimes a compound "1 1:5" attribute; take the final
		// whitespace-separated token per spec's documented open question.
		fields := strings.Fields(v)
		if len(fields) > 0 {
			v = fields[len(fields)-1]
		}
		parts := strings.SplitN(v, ":", 2)
		if len(parts) == 2 {
			if n, err := strconv.Atoi(parts[1]); err == nil {
				rs.spansEnd = n
			}
		}
	}
	return rs
}

// newRawCell parses a <c> start element's r/t/s attributes. cur supplies
// the per-row auto-increment counter used when r is absent.
func newRawCell(el xml.StartElement, cur *rowState) *rawCell {
	cc := &rawCell{}
	if v, ok := attr(el, "t"); ok {
		cc.typ = v
	}
	if v, ok := attr(el, "s"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cc.style = n
			cc.hasStyle = true
		}
	}
	if v, ok := attr(el, "r"); ok {
		if letters, _, ok := SplitAddress(v); ok {
			cc.key = ColumnIndex(letters) - 1
			cc.address = v
			return cc
		}
	}
	cc.key = cur.autoKey
	cur.autoKey++
	return cc
}

// materialize builds the dense row vector for cur per spec §4.7.1 steps
// 2-4: sparse-to-dense with a sorted-key fallback for the (unreachable in
// practice, but documented) negative-key case, padded to spans and to the
// sheet's declared dimension.
func (s *Sheet) materialize(cur *rowState) []string {
	maxKey := -1
	negative := false
	for k := range cur.values {
		if k > maxKey {
			maxKey = k
		}
		if k < 0 {
			negative = true
		}
	}

	var row []string
	if negative {
		keys := make([]int, 0, len(cur.values))
		for k := range cur.values {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		row = make([]string, len(keys))
		for i, k := range keys {
			row[i] = cur.values[k]
		}
	} else {
		row = make([]string, maxKey+1)
		for k, v := range cur.values {
			row[k] = v
		}
	}

	if cur.spansEnd > len(row) {
		row = fitWidth(row, cur.spansEnd)
	}
	if s.dimensionCols > len(row) {
		row = fitWidth(row, s.dimensionCols)
	}
	if w := s.mergeRowWidths[cur.num]; w > len(row) {
		row = fitWidth(row, w)
	}
	return row
}

// applyMerges overwrites every non-anchor merged address in row with the
// anchor's finalized value, per spec §4.7.5/invariant 7.
func (s *Sheet) applyMerges(row []string, rowNum int, anchorValues map[string]string) {
	if len(s.merges) == 0 {
		return
	}
	for idx := range row {
		addr := ColumnLetters(idx+1) + strconv.Itoa(rowNum)
		anchor, ok := s.merges[addr]
		if !ok {
			continue
		}
		if v, ok := anchorValues[anchor]; ok {
			row[idx] = v
		}
	}
}

func lastNonEmpty(row []string) int {
	for i := len(row) - 1; i >= 0; i-- {
		if row[i] != "" {
			return i
		}
	}
	return -1
}

func fitWidth(row []string, width int) []string {
	if width < 0 {
		width = 0
	}
	if len(row) == width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

func allEmpty(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
