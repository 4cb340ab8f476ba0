// Package sheet decodes one worksheet XML document into dense, CSV-ready
// rows.
//
// The decoder is a state-driven event parser rather than a callback-based
// SAX handler reading shared mutable fields: ParserState names each nested
// context (sheet data, row, cell, cell value) explicitly, and every state
// transition happens at an encoding/xml.Decoder token boundary.
package sheet

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/dilshod/xlsx2csv/internal/relationships"
	"github.com/dilshod/xlsx2csv/internal/sharedstrings"
	"github.com/dilshod/xlsx2csv/internal/styles"
)

// ParserState names the nested contexts the decoder moves through.
type ParserState int

const (
	StateStart ParserState = iota
	StateSheetData
	StateRow
	StateCell
	StateCellValue
)

// ErrValue reports a fatal value-conversion failure: an out-of-range
// shared-string index, or a date/time/float transformation that failed.
// Per spec §7 these are always fatal, never silently downgraded.
var ErrValue = fmt.Errorf("sheet: value error")

// Config carries the per-conversion behavior switches of spec §6/§9.
type Config struct {
	SkipHiddenRows      bool
	SkipEmptyLines      bool
	SkipTrailingColumns bool
	Hyperlinks          bool
	MergeCells          bool

	DateFormat      string
	TimeFormat      string
	FloatFormat     string
	ScientificFloat bool
	IgnoreFormats   map[styles.Class]bool
}

func (c Config) ignores(cls styles.Class) bool {
	return c.IgnoreFormats != nil && c.IgnoreFormats[cls]
}

// Sheet decodes a single worksheet XML document against its workbook's
// shared strings, styles, and date system.
type Sheet struct {
	data       []byte
	strings    *sharedstrings.Pool
	styleTable styles.Table
	date1904   bool
	cfg        Config

	dimensionCols  int
	hyperlinks     map[string]string
	merges         map[string]string
	mergeRowWidths map[int]int
}

// New prepares a Sheet for decoding: it pre-scans data for the sheet's
// dimension, hyperlinks (when cfg.Hyperlinks), and merged ranges (when
// cfg.MergeCells), per spec §4.7.4/§4.7.5.
func New(data []byte, pool *sharedstrings.Pool, styleTable styles.Table, date1904 bool, rels relationships.Table, cfg Config) (*Sheet, error) {
	s := &Sheet{
		data:          data,
		strings:       pool,
		styleTable:    styleTable,
		date1904:      date1904,
		cfg:           cfg,
		dimensionCols: scanDimensionCols(data),
	}
	if cfg.Hyperlinks {
		links, err := scanHyperlinks(data, rels)
		if err != nil {
			return nil, err
		}
		s.hyperlinks = links
	}
	if cfg.MergeCells {
		merges, err := scanMergeCells(data)
		if err != nil {
			return nil, err
		}
		s.merges = merges
		s.mergeRowWidths = make(map[int]int, len(merges))
		for addr := range merges {
			letters, row, ok := SplitAddress(addr)
			if !ok {
				continue
			}
			col := ColumnIndex(letters)
			if col > s.mergeRowWidths[row] {
				s.mergeRowWidths[row] = col
			}
		}
	}
	return s, nil
}

// rawCell tracks one <c> element while it is being parsed.
type rawCell struct {
	key     int
	address string
	typ     string
	style   int
	hasStyle bool
	buf     strings.Builder
}

// rowState tracks one <row> element while it is being parsed.
type rowState struct {
	num      int
	spansEnd int
	hidden   bool
	values   map[int]string
	autoKey  int
}

// Rows runs the decoder over the sheet's XML and calls yield once per
// materialized row (rowNum, row), in increasing rowNum order, applying gap
// filling, dimension/spans padding, and trailing-column trimming as
// described in spec §4.7.1. Returning false from yield stops decoding
// early. The returned error is nil unless the XML itself was malformed or a
// cell's value failed to convert (wrapping ErrValue).
func (s *Sheet) Rows(yield func(rowNum int, row []string) bool) error {
	dec := xml.NewDecoder(bytes.NewReader(s.data))
	state := StateStart
	lastEmitted := 0
	trailingWidth := -1
	var cur *rowState
	var curCell *rawCell
	anchorValues := make(map[string]string)
	stopped := false

	emit := func(rowNum int, row []string) bool {
		if s.cfg.SkipTrailingColumns {
			if trailingWidth < 0 {
				trailingWidth = lastNonEmpty(row) + 1
			}
			row = fitWidth(row, trailingWidth)
		}
		return yield(rowNum, row)
	}

	finishRow := func() bool {
		row := s.materialize(cur)
		s.applyMerges(row, cur.num, anchorValues)

		if !s.cfg.SkipEmptyLines {
			for gap := lastEmitted + 1; gap < cur.num; gap++ {
				if !emit(gap, make([]string, len(row))) {
					return false
				}
			}
		}
		lastEmitted = cur.num

		if s.cfg.SkipEmptyLines && allEmpty(row) {
			return true
		}
		return emit(cur.num, row)
	}

	for !stopped {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("sheet: decode: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			name := localName(el.Name.Local)
			switch {
			case name == "sheetData":
				state = StateSheetData
			case name == "row" && state == StateSheetData:
				rs := newRowState(el)
				if rs.hidden && s.cfg.SkipHiddenRows {
					if err := dec.Skip(); err != nil {
						return fmt.Errorf("sheet: decode: %w", err)
					}
					continue
				}
				cur = rs
				state = StateRow
			case name == "c" && state == StateRow:
				cc := newRawCell(el, cur)
				curCell = cc
				state = StateCell
			case (name == "v" || name == "is" || name == "t") && state == StateCell:
				state = StateCellValue
			}
		case xml.CharData:
			if state == StateCellValue && curCell != nil {
				curCell.buf.Write(el)
			}
		case xml.EndElement:
			name := localName(el.Name.Local)
			switch {
			case (name == "v" || name == "is" || name == "t") && state == StateCellValue:
				state = StateCell
			case name == "c" && state == StateCell:
				if curCell != nil {
					val, err := s.renderCell(curCell)
					if err != nil {
						return err
					}
					if cur.values == nil {
						cur.values = make(map[int]string)
					}
					cur.values[curCell.key] = val
					if curCell.address != "" {
						anchorValues[curCell.address] = val
					}
				}
				curCell = nil
				state = StateRow
			case name == "row" && state == StateRow:
				if !finishRow() {
					stopped = true
					break
				}
				cur = nil
				state = StateSheetData
			case name == "sheetData":
				state = StateStart
			}
		}
	}
	return nil
}

// localName strips a namespace prefix from an element name. encoding/xml's
// Name.Local has normally done this already, since it splits every
// "prefix:tag" name whether or not the prefix is declared; the case left is
// a name with an empty prefix such as ":c", which encoding/xml reports whole
// as Local.
func localName(s string) string {
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		return s[i+1:]
	}
	return s
}
