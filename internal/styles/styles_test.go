package styles_test

import (
	"testing"

	"github.com/dilshod/xlsx2csv/internal/styles"
)

const sampleStyles = `<?xml version="1.0"?>
<styleSheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <numFmts count="1">
    <numFmt numFmtId="164" formatCode="0.0%"/>
  </numFmts>
  <cellXfs count="3">
    <xf numFmtId="0" xfId="0"/>
    <xf numFmtId="14" xfId="0"/>
    <xf numFmtId="164" xfId="0"/>
  </cellXfs>
</styleSheet>`

func TestParseResolvesStandardAndCustomFormats(t *testing.T) {
	table, err := styles.Parse([]byte(sampleStyles))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tests := []struct {
		idx      int
		wantCode string
		wantOK   bool
	}{
		{0, "general", true},
		{1, "mm-dd-yy", true},
		{2, "0.0%", true},
		{99, "", false},
	}
	for _, tc := range tests {
		code, ok := table.Format(tc.idx)
		if ok != tc.wantOK || code != tc.wantCode {
			t.Errorf("Format(%d) = %q, %v, want %q, %v", tc.idx, code, ok, tc.wantCode, tc.wantOK)
		}
	}
}

func TestParseEmptyYieldsNoFormatTable(t *testing.T) {
	table, err := styles.Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if _, ok := table.Format(0); ok {
		t.Error("Format(0) on empty table = ok, want not ok")
	}
}

func TestClassifyExplicitFormats(t *testing.T) {
	tests := []struct {
		format string
		raw    string
		want   styles.Class
	}{
		{"general", "1.5", styles.ClassFloat},
		{"0.00%", "0.5", styles.ClassPercentage},
		{"mm-dd-yy", "44197", styles.ClassDate},
		{"h:mm", "0.75", styles.ClassTime},
		{"@", "text", styles.ClassString},
	}
	for _, tc := range tests {
		got, ok := styles.Classify(tc.format, tc.raw, false)
		if !ok {
			t.Errorf("Classify(%q, %q) not ok", tc.format, tc.raw)
			continue
		}
		if got != tc.want {
			t.Errorf("Classify(%q, %q) = %v, want %v", tc.format, tc.raw, got, tc.want)
		}
	}
}

func TestClassifyCustomDateTimeHeuristic(t *testing.T) {
	// A custom format not in the explicit table but carrying date tokens:
	// values >= 1 classify as dates, fractional values as times.
	cls, ok := styles.Classify("yyyy/mm/dd;@", "44197", false)
	if !ok || cls != styles.ClassDate {
		t.Errorf("Classify custom date format = %v, %v, want ClassDate, true", cls, ok)
	}
	cls, ok = styles.Classify("yyyy/mm/dd;@", "0.25", false)
	if !ok || cls != styles.ClassTime {
		t.Errorf("Classify custom date format fractional = %v, %v, want ClassTime, true", cls, ok)
	}
}

func TestClassifyBracketedDurationIsNotADateToken(t *testing.T) {
	// "[h]:mm:ss" is explicitly listed, but a lookalike custom bracketed
	// duration format with no other date tokens should fall through to the
	// plain-numeric branch instead of being misread as a date.
	cls, ok := styles.Classify("[h]", "5", false)
	if !ok || cls != styles.ClassFloat {
		t.Errorf("Classify([h]) = %v, %v, want ClassFloat, true", cls, ok)
	}
}

func TestClassifyUnclassifiable(t *testing.T) {
	_, ok := styles.Classify("@", "not-a-number-but-string-format-is-fine", false)
	if !ok {
		t.Error("Classify(@, text) should always succeed as ClassString")
	}
	_, ok = styles.Classify("yyyy/mm/dd", "not-a-number", false)
	if ok {
		t.Error("Classify(yyyy/mm/dd, non-numeric) should fail")
	}
}

func TestRenderDateScenarioB(t *testing.T) {
	// spec scenario B: mm-dd-yy format, serial 44197 -> 01-01-21.
	got, err := styles.RenderDate("44197", "mm-dd-yy", "", false)
	if err != nil {
		t.Fatalf("RenderDate: %v", err)
	}
	if got != "01-01-21" {
		t.Errorf("RenderDate = %q, want 01-01-21", got)
	}
}

func TestRenderTimeScenarioC(t *testing.T) {
	// spec scenario C: time-of-day serial 0.75 -> 18:00.
	got, err := styles.RenderTime("0.75", "")
	if err != nil {
		t.Fatalf("RenderTime: %v", err)
	}
	if got != "18:00" {
		t.Errorf("RenderTime = %q, want 18:00", got)
	}
}

func TestRenderFloatScenarioE(t *testing.T) {
	// spec scenario E: general format, scientific-notation raw text.
	got, err := styles.RenderFloat("1.23E+2", "general", "")
	if err != nil {
		t.Fatalf("RenderFloat: %v", err)
	}
	if got != "123" {
		t.Errorf("RenderFloat = %q, want 123", got)
	}
}

func TestRenderFloatFixedDecimals(t *testing.T) {
	got, err := styles.RenderFloat("3.14159", "0.00", "")
	if err != nil {
		t.Fatalf("RenderFloat: %v", err)
	}
	if got != "3.14" {
		t.Errorf("RenderFloat = %q, want 3.14", got)
	}
}

func TestRenderFloatPercentage(t *testing.T) {
	got, err := styles.RenderFloat("0.5", "0.00%", "")
	if err != nil {
		t.Fatalf("RenderFloat: %v", err)
	}
	// 0.5 is scaled by 100, and the percent sign adds one decimal to the
	// format's two; no percent sign is appended.
	if got != "50.000" {
		t.Errorf("RenderFloat(percentage) = %q, want 50.000", got)
	}
}

func TestRenderFloatCustomFloatFormat(t *testing.T) {
	got, err := styles.RenderFloat("3.5", "general", "%.2f")
	if err != nil {
		t.Fatalf("RenderFloat: %v", err)
	}
	if got != "3.5" {
		t.Errorf("RenderFloat = %q, want 3.5 (trailing zero stripped)", got)
	}
}
