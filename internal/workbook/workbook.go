// Package workbook parses xl/workbook.xml into the sheet manifest and
// resolves each declared sheet to the worksheet part that holds its data.
package workbook

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/dilshod/xlsx2csv/internal/container"
	"github.com/dilshod/xlsx2csv/internal/contenttypes"
	"github.com/dilshod/xlsx2csv/internal/relationships"
)

// Visibility mirrors a <sheet> element's state attribute.
type Visibility int

const (
	Visible Visibility = iota
	Hidden
	VeryHidden
)

func (v Visibility) String() string {
	switch v {
	case Hidden:
		return "hidden"
	case VeryHidden:
		return "veryHidden"
	default:
		return "visible"
	}
}

// Sheet is one declared entry in the workbook manifest, in declaration order.
type Sheet struct {
	Name       string
	Index      int // 1-based declaration position
	RelationID string
	Visibility Visibility
}

// Manifest holds the parsed workbook part: its sheet list and date system.
type Manifest struct {
	Sheets    []Sheet
	Date1904  bool
	container *container.Container
	rels      relationships.Table
	types     contenttypes.Index
}

type xmlWorkbook struct {
	WorkbookPr struct {
		Date1904 string `xml:"date1904,attr"`
	} `xml:"workbookPr"`
	Sheets struct {
		Sheet []xmlSheet `xml:"sheet"`
	} `xml:"sheets"`
}

type xmlSheet struct {
	Name  string `xml:"name,attr"`
	RID   string `xml:"id,attr"` // r:id, matched by Local name below
	State string `xml:"state,attr"`
}

// UnmarshalXML is implemented manually so the r:id attribute (namespaced
// "id" under the relationships namespace) is captured regardless of the
// prefix the workbook XML happens to use for it.
func (s *xmlSheet) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "name":
			s.Name = a.Value
		case "id":
			s.RID = a.Value
		case "state":
			s.State = a.Value
		}
	}
	return d.Skip()
}

// Parse reads xl/workbook.xml (already loaded as data), producing the
// ordered sheet manifest and the date system. It does not load the
// workbook relationships table; Open does.
func Parse(data []byte) (*Manifest, error) {
	var xw xmlWorkbook
	dec := xml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&xw); err != nil {
		return nil, fmt.Errorf("workbook: parse: %w", err)
	}

	m := &Manifest{
		Date1904: xw.WorkbookPr.Date1904 != "" && !strings.EqualFold(xw.WorkbookPr.Date1904, "false"),
	}
	for i, s := range xw.Sheets.Sheet {
		m.Sheets = append(m.Sheets, Sheet{
			Name:       s.Name,
			Index:      i + 1,
			RelationID: s.RID,
			Visibility: parseVisibility(s.State),
		})
	}
	return m, nil
}

func parseVisibility(state string) Visibility {
	switch strings.ToLower(state) {
	case "hidden":
		return Hidden
	case "veryhidden":
		return VeryHidden
	default:
		return Visible
	}
}

// Open loads the workbook manifest, its relationships table, and the
// content-types index from an open container, per spec §4.2/§4.3/§4.4.
func Open(c *container.Container, workbookPath string) (*Manifest, error) {
	if workbookPath == "" {
		workbookPath = contenttypes.DefaultWorkbookPath
	}

	data, err := c.ReadAll(workbookPath)
	if err != nil {
		return nil, fmt.Errorf("workbook: open %s: %w", workbookPath, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	m.container = c

	relsPath := relsPathFor(workbookPath)
	relsData, err := c.ReadAll(relsPath)
	if err != nil {
		return nil, fmt.Errorf("workbook: relationships %s: %w", relsPath, err)
	}
	if len(relsData) > 0 {
		rels, err := relationships.Parse(relsData)
		if err != nil {
			return nil, fmt.Errorf("workbook: relationships %s: %w", relsPath, err)
		}
		m.rels = rels
	}

	ctData, err := c.ReadAll("/[Content_Types].xml")
	if err == nil && len(ctData) > 0 {
		m.types = contenttypes.Parse(ctData)
	}

	return m, nil
}

// relsPathFor returns the conventional sibling .rels part for a workbook
// part path, e.g. "/xl/workbook.xml" -> "/xl/_rels/workbook.xml.rels".
func relsPathFor(partPath string) string {
	partPath = strings.TrimPrefix(partPath, "/")
	idx := strings.LastIndexByte(partPath, '/')
	dir, file := "", partPath
	if idx >= 0 {
		dir, file = partPath[:idx], partPath[idx+1:]
	}
	if dir == "" {
		return "/_rels/" + file + ".rels"
	}
	return "/" + dir + "/_rels/" + file + ".rels"
}

// ErrSheetNotFound is returned by ResolveSheetPart when no candidate part
// exists for the requested sheet.
var ErrSheetNotFound = fmt.Errorf("workbook: sheet not found")

// ResolveSheetPart implements the §4.4 resolution order for sheet i (the
// 1-based declaration position) identified by relationID.
func (m *Manifest) ResolveSheetPart(i int, relationID string) (string, error) {
	if relationID != "" {
		if rel, ok := m.rels[relationID]; ok {
			return relationships.Normalize(rel.Target), nil
		}
	}
	for _, candidate := range []string{
		fmt.Sprintf("/xl/worksheets/sheet%d.xml", i),
		fmt.Sprintf("/xl/worksheets/worksheet%d.xml", i),
	} {
		if m.container.Has(candidate) {
			return candidate, nil
		}
	}
	if i == 1 && m.types.Worksheet != "" {
		return relationships.Normalize(m.types.Worksheet), nil
	}
	return "", ErrSheetNotFound
}

// OpenSheetPart resolves and reads a sheet's raw XML bytes.
func (m *Manifest) OpenSheetPart(i int, relationID string) ([]byte, error) {
	part, err := m.ResolveSheetPart(i, relationID)
	if err != nil {
		return nil, err
	}
	data, err := m.container.ReadAll(part)
	if err != nil {
		return nil, fmt.Errorf("workbook: sheet part %s: %w", part, err)
	}
	if data == nil {
		return nil, ErrSheetNotFound
	}
	return data, nil
}

// ByName returns the sheet declared with the given name.
func (m *Manifest) ByName(name string) (Sheet, bool) {
	for _, s := range m.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return Sheet{}, false
}

// Relationships exposes the parsed workbook relationships table (nil when
// the workbook has no relationships part).
func (m *Manifest) Relationships() relationships.Table {
	return m.rels
}

// Container exposes the container the manifest was opened from (nil for a
// manifest built by Parse alone).
func (m *Manifest) Container() *container.Container {
	return m.container
}
