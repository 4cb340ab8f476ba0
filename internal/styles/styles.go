// Package styles parses the xl/styles.xml part (numFmts and cellXfs) and
// resolves a cell's style index to a numeric format string, then classifies
// and renders values according to that format.
package styles

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// NoFormat marks a cellXfs entry that carries no usable numFmtId: the
// attribute is absent or not an integer, and no applyNumberFormat attribute
// names a standard format. Cells styled this way are emitted as raw text,
// per spec §4.7.3.
const NoFormat = -1

// Table holds the resolved numeric-format metadata for one workbook.
type Table struct {
	// NumFmts maps a custom numFmtId (>= 164 by convention, but any id the
	// workbook defines) to its lowercase, backslash-stripped format code.
	NumFmts map[int]string
	// CellXfs is the ordered list of numFmtId values, one per <xf> child of
	// <cellXfs>. The slice index is the style index stored on a cell's "s"
	// attribute. An entry of NoFormat means "no style" for that index.
	CellXfs []int
}

// StandardFormats are the built-in numFmtId -> format code mappings that
// spec §3 requires independent of any custom numFmts the workbook defines.
var StandardFormats = map[int]string{
	0:  "general",
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	9:  "0%",
	10: "0.00%",
	11: "0.00e+00",
	12: "# ?/?",
	13: "# ??/??",
	14: "mm-dd-yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm am/pm",
	19: "h:mm:ss am/pm",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yy h:mm",
	37: "#,##0 ;(#,##0)",
	38: "#,##0 ;[red](#,##0)",
	39: "#,##0.00;(#,##0.00)",
	40: "#,##0.00;[red](#,##0.00)",
	45: "mm:ss",
	46: "[h]:mm:ss",
	47: "mm:ss.0",
	48: "##0.0e+0",
	49: "@",
}

// Parse reads xl/styles.xml and returns the resolved Table. A nil/empty
// data slice (styles.xml absent, which is legal) yields a Table with no
// cellXfs entries, whose Format always reports ok == false.
func Parse(data []byte) (Table, error) {
	t := Table{NumFmts: map[int]string{}}
	if len(data) == 0 {
		return t, nil
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	var inCellXfs bool

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("styles: parse: %w", err)
		}

		el, ok := tok.(xml.StartElement)
		if !ok {
			if end, ok := tok.(xml.EndElement); ok && end.Name.Local == "cellXfs" {
				inCellXfs = false
			}
			continue
		}

		switch el.Name.Local {
		case "numFmt":
			id, code := parseNumFmt(el)
			t.NumFmts[id] = code
		case "cellXfs":
			inCellXfs = true
		case "xf":
			if !inCellXfs {
				continue
			}
			t.CellXfs = append(t.CellXfs, parseXf(el))
		}
	}
	return t, nil
}

func attrValue(el xml.StartElement, local string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// parseNumFmt decodes one <numFmt numFmtId="…" formatCode="…"/> element,
// lowercasing the code and stripping literal backslashes, per spec §4.6.
func parseNumFmt(el xml.StartElement) (int, string) {
	idStr, _ := attrValue(el, "numFmtId")
	id, _ := strconv.Atoi(idStr)
	code, _ := attrValue(el, "formatCode")
	code = strings.ToLower(strings.ReplaceAll(code, `\`, ""))
	return id, code
}

// parseXf decodes one <xf/> child of <cellXfs>, resolving its numFmtId per
// spec §4.6: prefer the explicit numFmtId attribute; if absent, fall back to
// an applyNumberFormat attribute that itself names a known standard format;
// otherwise the entry carries NoFormat.
func parseXf(el xml.StartElement) int {
	if idStr, ok := attrValue(el, "numFmtId"); ok {
		if id, err := strconv.Atoi(idStr); err == nil {
			return id
		}
	}
	if applyStr, ok := attrValue(el, "applyNumberFormat"); ok {
		if id, err := strconv.Atoi(applyStr); err == nil {
			if _, known := StandardFormats[id]; known {
				return id
			}
		}
	}
	return NoFormat
}

// Format resolves a cell style index to its effective numeric format code.
// ok is false when the index is out of range (treated as "no style", per
// the invariant in spec §3) or resolves to no known format.
func (t Table) Format(styleIndex int) (code string, ok bool) {
	if styleIndex < 0 || styleIndex >= len(t.CellXfs) {
		return "", false
	}
	numFmtID := t.CellXfs[styleIndex]
	if numFmtID == NoFormat {
		return "", false
	}
	if code, ok := t.NumFmts[numFmtID]; ok {
		return code, true
	}
	if code, ok := StandardFormats[numFmtID]; ok {
		return code, true
	}
	return "", false
}
