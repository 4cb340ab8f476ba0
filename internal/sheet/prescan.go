package sheet

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"

	"github.com/dilshod/xlsx2csv/internal/relationships"
)

// blockPattern finds a named top-level element and everything between its
// opening and closing tags, tolerating an arbitrary namespace prefix, the
// same naive substring approach the hyperlink/merge-cell pre-scan this
// converter descends from uses: locate the section by name, then parse it
// as a standalone fragment rather than re-walking the whole document.
func blockPattern(tag string) *regexp.Regexp {
	q := regexp.QuoteMeta(tag)
	return regexp.MustCompile(`(?s)<(?:\w+:)?` + q + `\b[^>]*>.*?</(?:\w+:)?` + q + `>`)
}

var hyperlinksBlock = blockPattern("hyperlinks")
var mergeCellsBlock = blockPattern("mergeCells")

// relationshipsNS is the fixed, well-known namespace URI OOXML always uses
// for the "r:id" attribute on <hyperlink>, so the synthesized fragment can
// declare it without needing to recover the real worksheet root tag.
const relationshipsNS = `xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

func synthesize(block []byte) []byte {
	return []byte(`<root ` + relationshipsNS + `>` + string(block) + `</root>`)
}

type xmlHyperlinkList struct {
	Hyperlinks []xmlHyperlink `xml:"hyperlink"`
}

type xmlHyperlink struct {
	Ref string
	RID string
}

func (h *xmlHyperlink) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "ref":
			h.Ref = a.Value
		case "id":
			h.RID = a.Value
		}
	}
	return d.Skip()
}

// scanHyperlinks pre-scans raw sheet XML for a <hyperlinks> section and
// returns a map from every cell address covered by a hyperlink's ref range
// to its resolved target URL, per spec §4.7.4.
func scanHyperlinks(data []byte, rels relationships.Table) (map[string]string, error) {
	loc := hyperlinksBlock.Find(data)
	if loc == nil {
		return nil, nil
	}
	var list xmlHyperlinkList
	if err := xml.Unmarshal(synthesize(loc), &list); err != nil {
		return nil, fmt.Errorf("sheet: hyperlinks: %w", err)
	}

	out := make(map[string]string)
	for _, h := range list.Hyperlinks {
		if h.Ref == "" || h.RID == "" {
			continue
		}
		rel, ok := rels[h.RID]
		if !ok {
			continue
		}
		// Hyperlink targets are almost always external URLs (TargetMode
		// "External"), not workbook-internal parts, so the raw target is
		// used as-is rather than through relationships.Normalize, which
		// would wrongly root a non-"/"-prefixed URL under "xl/".
		target := rel.Target
		for _, addr := range ExpandRange(h.Ref) {
			out[addr] = target
		}
	}
	return out, nil
}

type xmlMergeCellList struct {
	MergeCell []xmlMergeCell `xml:"mergeCell"`
}

type xmlMergeCell struct {
	Ref string `xml:"ref,attr"`
}

// scanMergeCells pre-scans raw sheet XML for a <mergeCells> section and
// returns a map from every non-anchor address in each merge range to its
// range's anchor (top-left) address, per spec §4.7.5.
func scanMergeCells(data []byte) (map[string]string, error) {
	loc := mergeCellsBlock.Find(data)
	if loc == nil {
		return nil, nil
	}
	var list xmlMergeCellList
	if err := xml.Unmarshal(synthesize(loc), &list); err != nil {
		return nil, fmt.Errorf("sheet: mergeCells: %w", err)
	}

	out := make(map[string]string)
	for _, mc := range list.MergeCell {
		addrs := ExpandRange(mc.Ref)
		if len(addrs) < 2 {
			continue
		}
		anchor := addrs[0]
		for _, addr := range addrs[1:] {
			out[addr] = anchor
		}
	}
	return out, nil
}

// dimensionRef matches the ref attribute of a top-level <dimension/>
// element, read directly off the raw bytes since it always appears once,
// near the top of the document, before any row data.
var dimensionRef = regexp.MustCompile(`<(?:\w+:)?dimension\b[^>]*\bref="([^"]*)"`)

// scanDimensionCols returns the number of columns declared by the sheet's
// <dimension ref="A1:C10"/> element, or 0 if absent/unparseable.
func scanDimensionCols(data []byte) int {
	m := dimensionRef.FindSubmatch(data)
	if m == nil {
		return 0
	}
	ref := string(m[1])
	parts := strings.SplitN(ref, ":", 2)
	last := parts[len(parts)-1]
	letters, _, ok := SplitAddress(last)
	if !ok {
		return 0
	}
	return ColumnIndex(letters)
}
