// Package contenttypes parses the workbook's [Content_Types].xml manifest,
// mapping logical part roles (workbook/styles/shared-strings/worksheet) to
// the part paths that declare them.
package contenttypes

import "encoding/xml"

// Well-known content type values, per ECMA-376.
const (
	workbookType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	stylesType         = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
	sharedStringsType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"
	worksheetType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	relationshipsType  = "application/vnd.openxmlformats-package.relationships+xml"
)

// Index holds the part-path resolutions discovered in [Content_Types].xml.
type Index struct {
	// Workbook is the first part path declared with the workbook content type.
	Workbook string
	// Styles is the first part path declared with the styles content type.
	Styles string
	// SharedStrings is the first part path declared with the shared-strings
	// content type.
	SharedStrings string
	// Worksheet remembers only the LAST worksheet part path seen, per the
	// documented imperfection in spec §4.2: callers must not rely on this
	// field to resolve an arbitrary sheet's part — use the workbook
	// relationships table instead.
	Worksheet string
	// Relationships lists every part path declared with the relationships
	// content type (usually unused directly; relationships parts are found
	// by the conventional "_rels/" sibling convention instead).
	Relationships []string
}

type xmlTypes struct {
	Defaults []xmlDefault `xml:"Default"`
	Overrides []xmlOverride `xml:"Override"`
}

type xmlDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type xmlOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// Parse decodes the raw bytes of [Content_Types].xml. A nil/empty data
// slice yields a zero-value Index (callers fall back to conventional paths).
func Parse(data []byte) Index {
	var idx Index
	if len(data) == 0 {
		return idx
	}
	var doc xmlTypes
	if err := xml.Unmarshal(data, &doc); err != nil {
		return idx
	}
	for _, o := range doc.Overrides {
		switch o.ContentType {
		case workbookType:
			if idx.Workbook == "" {
				idx.Workbook = o.PartName
			}
		case stylesType:
			if idx.Styles == "" {
				idx.Styles = o.PartName
			}
		case sharedStringsType:
			if idx.SharedStrings == "" {
				idx.SharedStrings = o.PartName
			}
		case worksheetType:
			// Intentionally overwritten on every match: the manifest only
			// remembers the LAST worksheet part it saw (spec §4.2).
			idx.Worksheet = o.PartName
		case relationshipsType:
			idx.Relationships = append(idx.Relationships, o.PartName)
		}
	}
	return idx
}

// DefaultWorkbookPath is the conventional workbook part path used when the
// manifest does not declare one.
const DefaultWorkbookPath = "/xl/workbook.xml"
