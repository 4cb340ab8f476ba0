// Package relationships parses OOXML ".rels" relationship XML parts into an
// id -> {type, target} table.
package relationships

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Relationship is one entry of a parsed .rels document.
type Relationship struct {
	Type   string
	Target string
}

// Table maps relationship id to its Relationship.
type Table map[string]Relationship

// xmlRelationships mirrors the root element of a .rels document. Element and
// attribute names are matched bare via xml.Name.Local, which already strips
// any namespace prefix, so this struct works regardless of how the producer
// chose to declare the "r" namespace.
type xmlRelationships struct {
	Relationships []xmlRelationship `xml:"Relationship"`
}

type xmlRelationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// Parse decodes the raw bytes of a .rels XML document.
func Parse(data []byte) (Table, error) {
	var doc xmlRelationships
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("relationships: parse: %w", err)
	}
	t := make(Table, len(doc.Relationships))
	for _, r := range doc.Relationships {
		t[r.ID] = Relationship{Type: r.Type, Target: r.Target}
	}
	return t, nil
}

// Target looks up the target of a relationship by id, normalized to a
// workbook-rooted path ("xl/...") when the stored target is relative to the
// xl/ directory (the common case for workbook- and worksheet-level rels).
func (t Table) Target(id string) (string, bool) {
	rel, ok := t[id]
	if !ok {
		return "", false
	}
	return Normalize(rel.Target), true
}

// Normalize rewrites a relationship target into a path rooted at the ZIP
// archive's top level. Absolute targets (leading "/") are used as-is, minus
// the leading slash. Targets already rooted at "xl/" are used unchanged.
// Everything else is assumed relative to the "xl/" directory, which is
// where workbook.xml.rels and worksheet *.rels live.
func Normalize(target string) string {
	if target == "" {
		return target
	}
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	if strings.HasPrefix(target, "xl/") {
		return target
	}
	return "xl/" + strings.TrimPrefix(target, "./")
}
