package sheet

import (
	"fmt"
	"strconv"

	"github.com/dilshod/xlsx2csv/internal/styles"
)

// renderCell turns one parsed cell into its emitted string, implementing
// the type-attribute dispatch table and style-driven classification of
// spec §4.7.3, plus the optional hyperlink wrap of §4.7.4.
func (s *Sheet) renderCell(c *rawCell) (string, error) {
	raw := c.buf.String()

	val, err := s.transform(c, raw)
	if err != nil {
		return "", err
	}

	if s.cfg.Hyperlinks && c.address != "" {
		if target, ok := s.hyperlinks[c.address]; ok {
			val = fmt.Sprintf("<a href='%s'>%s</a>", target, val)
		}
	}
	return val, nil
}

func (s *Sheet) transform(c *rawCell, raw string) (string, error) {
	switch c.typ {
	case "s":
		idx, err := strconv.Atoi(raw)
		if err != nil {
			return "", fmt.Errorf("%w: shared string index %q: %v", ErrValue, raw, err)
		}
		str, ok := s.strings.Get(idx)
		if !ok {
			return "", fmt.Errorf("%w: shared string index %d out of range", ErrValue, idx)
		}
		return str, nil
	case "b":
		switch raw {
		case "1":
			return "TRUE", nil
		case "0":
			return "FALSE", nil
		default:
			return raw, nil
		}
	case "str", "inlineStr":
		return raw, nil
	case "n":
		if raw == "" {
			return "", nil
		}
		v, err := styles.RenderFloat(raw, "", s.cfg.FloatFormat)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrValue, err)
		}
		return v, nil
	case "":
		return s.transformStyled(c, raw)
	default:
		return raw, nil
	}
}

// transformStyled implements the style-driven classification and
// transformation path used when a cell carries no "t" attribute.
func (s *Sheet) transformStyled(c *rawCell, raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	if !c.hasStyle {
		return raw, nil
	}
	format, ok := s.styleTable.Format(c.style)
	if !ok {
		return raw, nil
	}

	class, ok := styles.Classify(format, raw, s.cfg.ScientificFloat)
	if !ok {
		return raw, nil
	}
	if class == styles.ClassDate && s.cfg.DateFormat == "float" {
		class = styles.ClassFloat
	}
	if s.cfg.ignores(class) {
		return raw, nil
	}

	switch class {
	case styles.ClassDate:
		v, err := styles.RenderDate(raw, format, s.cfg.DateFormat, s.date1904)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrValue, err)
		}
		return v, nil
	case styles.ClassTime:
		v, err := styles.RenderTime(raw, s.cfg.TimeFormat)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrValue, err)
		}
		return v, nil
	case styles.ClassFloat, styles.ClassPercentage:
		v, err := styles.RenderFloat(raw, format, s.cfg.FloatFormat)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrValue, err)
		}
		return v, nil
	default:
		return raw, nil
	}
}
