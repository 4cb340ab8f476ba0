// Package sharedstrings parses the xl/sharedStrings.xml part and provides
// indexed access to the de-duplicated string pool that cells of type "s"
// reference by index.
//
// Parsing is a small SAX-style state machine driven by an encoding/xml
// Decoder token loop, mirroring the in_si/in_t/in_rPh flags of the original
// expat-based SharedStrings handler this converter descends from: character
// data is only accumulated while inside a <t> element that is itself inside
// an <si>, and is ignored entirely inside a phonetic run (<rPh>).
package sharedstrings

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Pool holds the ordered shared strings parsed from sharedStrings.xml.
type Pool struct {
	values []string
}

// Options controls post-processing applied to each string as it is loaded.
type Options struct {
	// Escape replaces literal CR/LF/TAB with the two-character escape
	// sequences \r, \n, \t. Mutually exclusive with NoLineBreaks, which
	// takes precedence when both are set.
	Escape bool
	// NoLineBreaks replaces each of CR/LF/TAB with a single space.
	NoLineBreaks bool
}

var lineBreakReplacer = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ")
var escapeReplacer = strings.NewReplacer("\r", `\r`, "\n", `\n`, "\t", `\t`)

func (o Options) apply(s string) string {
	switch {
	case o.NoLineBreaks:
		return lineBreakReplacer.Replace(s)
	case o.Escape:
		return escapeReplacer.Replace(s)
	default:
		return s
	}
}

// Parse reads every <si> entry from data and returns a populated Pool.
func Parse(data []byte, opts Options) (*Pool, error) {
	p := &Pool{}
	dec := xml.NewDecoder(strings.NewReader(string(data)))

	var (
		inSI   bool
		inT    bool
		inRPh  bool
		buf    strings.Builder
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sharedstrings: parse: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "si":
				inSI = true
				buf.Reset()
			case "rPh":
				inRPh = true
			case "t":
				if inSI && !inRPh {
					inT = true
				}
			}
		case xml.CharData:
			if inSI && inT && !inRPh {
				buf.Write(el)
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inT = false
			case "rPh":
				inRPh = false
			case "si":
				inSI = false
				p.values = append(p.values, opts.apply(buf.String()))
			}
		}
	}
	return p, nil
}

// Len returns the number of strings in the pool.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.values)
}

// Get returns the string at idx. ok is false when idx is out of range,
// which callers must treat as a fatal ValueError per spec §3/§7 rather than
// silently substituting an empty string.
func (p *Pool) Get(idx int) (string, bool) {
	if p == nil || idx < 0 || idx >= len(p.values) {
		return "", false
	}
	return p.values[idx], true
}
