package sheet_test

import (
	"testing"

	"github.com/dilshod/xlsx2csv/internal/relationships"
	"github.com/dilshod/xlsx2csv/internal/sharedstrings"
	"github.com/dilshod/xlsx2csv/internal/sheet"
	"github.com/dilshod/xlsx2csv/internal/styles"
)

func pool(t *testing.T, values ...string) *sharedstrings.Pool {
	t.Helper()
	var xml string
	for _, v := range values {
		xml += "<si><t>" + v + "</t></si>"
	}
	p, err := sharedstrings.Parse([]byte("<sst>"+xml+"</sst>"), sharedstrings.Options{})
	if err != nil {
		t.Fatalf("sharedstrings.Parse: %v", err)
	}
	return p
}

func collect(t *testing.T, sh *sheet.Sheet) (rowNums []int, rows [][]string) {
	t.Helper()
	err := sh.Rows(func(n int, row []string) bool {
		rowNums = append(rowNums, n)
		cp := make([]string, len(row))
		copy(cp, row)
		rows = append(rows, cp)
		return true
	})
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	return
}

// Scenario A: a shared-string cell renders its pooled text.
func TestSharedStringCell(t *testing.T) {
	xmlData := `<worksheet><sheetData>
		<row r="1"><c r="A1" t="s"><v>0</v></c></row>
	</sheetData></worksheet>`
	sh, err := sheet.New([]byte(xmlData), pool(t, "hello"), styles.Table{}, false, nil, sheet.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, rows := collect(t, sh)
	if len(rows) != 1 || rows[0][0] != "hello" {
		t.Errorf("rows = %v, want [[hello]]", rows)
	}
}

// Scenario D: a sparse row padded to the declared dimension.
func TestSparseRowPaddedToDimension(t *testing.T) {
	xmlData := `<worksheet><dimension ref="A1:C1"/><sheetData>
		<row r="1"><c r="B1" t="inlineStr"><is><t>x</t></is></c></row>
	</sheetData></worksheet>`
	sh, err := sheet.New([]byte(xmlData), nil, styles.Table{}, false, nil, sheet.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, rows := collect(t, sh)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	want := []string{"", "x", ""}
	if len(rows[0]) != 3 || rows[0][0] != want[0] || rows[0][1] != want[1] || rows[0][2] != want[2] {
		t.Errorf("row = %v, want %v", rows[0], want)
	}
}

func TestGapFillBetweenRows(t *testing.T) {
	xmlData := `<worksheet><sheetData>
		<row r="1"><c r="A1" t="inlineStr"><is><t>a</t></is></c></row>
		<row r="4"><c r="A4" t="inlineStr"><is><t>d</t></is></c></row>
	</sheetData></worksheet>`
	sh, err := sheet.New([]byte(xmlData), nil, styles.Table{}, false, nil, sheet.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rowNums, rows := collect(t, sh)
	if len(rowNums) != 4 {
		t.Fatalf("got %d rows, want 4 (gap-filled)", len(rowNums))
	}
	for i, want := range []int{1, 2, 3, 4} {
		if rowNums[i] != want {
			t.Errorf("rowNums[%d] = %d, want %d", i, rowNums[i], want)
		}
	}
	if rows[1][0] != "" || rows[2][0] != "" {
		t.Errorf("gap rows should be blank, got %v, %v", rows[1], rows[2])
	}
}

func TestSkipHiddenRowsStillGapFills(t *testing.T) {
	xmlData := `<worksheet><sheetData>
		<row r="1"><c r="A1" t="inlineStr"><is><t>a</t></is></c></row>
		<row r="2" hidden="1"><c r="A2" t="inlineStr"><is><t>hidden</t></is></c></row>
		<row r="3"><c r="A3" t="inlineStr"><is><t>c</t></is></c></row>
	</sheetData></worksheet>`
	sh, err := sheet.New([]byte(xmlData), nil, styles.Table{}, false, nil, sheet.Config{SkipHiddenRows: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rowNums, rows := collect(t, sh)
	if len(rowNums) != 3 {
		t.Fatalf("got %d rows, want 3", len(rowNums))
	}
	if rows[1][0] != "" {
		t.Errorf("hidden row slot should be blank, got %q", rows[1][0])
	}
}

func TestSkipEmptyLines(t *testing.T) {
	xmlData := `<worksheet><sheetData>
		<row r="1"><c r="A1" t="inlineStr"><is><t>a</t></is></c></row>
		<row r="3"><c r="A3" t="inlineStr"><is><t>c</t></is></c></row>
	</sheetData></worksheet>`
	sh, err := sheet.New([]byte(xmlData), nil, styles.Table{}, false, nil, sheet.Config{SkipEmptyLines: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rowNums, _ := collect(t, sh)
	if len(rowNums) != 2 {
		t.Fatalf("got %d rows, want 2 (gap row skipped)", len(rowNums))
	}
	if rowNums[0] != 1 || rowNums[1] != 3 {
		t.Errorf("rowNums = %v, want [1 3]", rowNums)
	}
}

func TestSkipTrailingColumnsFixesWidthFromFirstRow(t *testing.T) {
	xmlData := `<worksheet><sheetData>
		<row r="1"><c r="A1" t="inlineStr"><is><t>a</t></is></c></row>
		<row r="2">
			<c r="A2" t="inlineStr"><is><t>b</t></is></c>
			<c r="B2" t="inlineStr"><is><t>c</t></is></c>
		</row>
	</sheetData></worksheet>`
	sh, err := sheet.New([]byte(xmlData), nil, styles.Table{}, false, nil, sheet.Config{SkipTrailingColumns: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, rows := collect(t, sh)
	if len(rows[0]) != 1 {
		t.Errorf("row[0] width = %d, want 1 (fixed from first row)", len(rows[0]))
	}
	if len(rows[1]) != 1 {
		t.Errorf("row[1] width = %d, want 1 (truncated to first row's width)", len(rows[1]))
	}
}

// Scenario F: a merged blank cell inherits its anchor's value even when it
// has no <c> element of its own.
func TestMergeCellsFillBlankMember(t *testing.T) {
	xmlData := `<worksheet><mergeCells count="1"><mergeCell ref="A1:B1"/></mergeCells><sheetData>
		<row r="1"><c r="A1" t="inlineStr"><is><t>x</t></is></c></row>
	</sheetData></worksheet>`
	sh, err := sheet.New([]byte(xmlData), nil, styles.Table{}, false, nil, sheet.Config{MergeCells: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, rows := collect(t, sh)
	if len(rows[0]) != 2 || rows[0][0] != "x" || rows[0][1] != "x" {
		t.Errorf("row = %v, want [x x]", rows[0])
	}
}

// Scenario G: a hyperlinked cell's rendered value is wrapped in an anchor tag.
func TestHyperlinkWrapsValue(t *testing.T) {
	xmlData := `<worksheet><hyperlinks><hyperlink ref="A1" r:id="rId1"/></hyperlinks><sheetData>
		<row r="1"><c r="A1" t="inlineStr"><is><t>click</t></is></c></row>
	</sheetData></worksheet>`
	rels := relationships.Table{"rId1": {Type: "hyperlink", Target: "https://e/"}}
	sh, err := sheet.New([]byte(xmlData), nil, styles.Table{}, false, rels, sheet.Config{Hyperlinks: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, rows := collect(t, sh)
	want := "<a href='https://e/'>click</a>"
	if rows[0][0] != want {
		t.Errorf("row[0][0] = %q, want %q", rows[0][0], want)
	}
}

func TestBooleanCells(t *testing.T) {
	xmlData := `<worksheet><sheetData>
		<row r="1"><c r="A1" t="b"><v>1</v></c><c r="B1" t="b"><v>0</v></c></row>
	</sheetData></worksheet>`
	sh, err := sheet.New([]byte(xmlData), nil, styles.Table{}, false, nil, sheet.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, rows := collect(t, sh)
	if rows[0][0] != "TRUE" || rows[0][1] != "FALSE" {
		t.Errorf("row = %v, want [TRUE FALSE]", rows[0])
	}
}

func TestStyledDateCell(t *testing.T) {
	stylesXML := `<styleSheet><cellXfs count="1"><xf numFmtId="14" xfId="0"/></cellXfs></styleSheet>`
	styleTbl, err := styles.Parse([]byte(stylesXML))
	if err != nil {
		t.Fatalf("styles.Parse: %v", err)
	}
	xmlData := `<worksheet><sheetData>
		<row r="1"><c r="A1" s="0"><v>44197</v></c></row>
	</sheetData></worksheet>`
	sh, err := sheet.New([]byte(xmlData), nil, styleTbl, false, nil, sheet.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, rows := collect(t, sh)
	if rows[0][0] != "01-01-21" {
		t.Errorf("row[0][0] = %q, want 01-01-21", rows[0][0])
	}
}

func TestStopIterationViaYieldFalse(t *testing.T) {
	xmlData := `<worksheet><sheetData>
		<row r="1"><c r="A1" t="inlineStr"><is><t>a</t></is></c></row>
		<row r="2"><c r="A2" t="inlineStr"><is><t>b</t></is></c></row>
	</sheetData></worksheet>`
	sh, err := sheet.New([]byte(xmlData), nil, styles.Table{}, false, nil, sheet.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	count := 0
	err = sh.Rows(func(n int, row []string) bool {
		count++
		return false
	})
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (stopped after first row)", count)
	}
}

// A format-less numeric cell (t="n") still goes through float rendering, so
// trailing zeros are stripped just as they are for a styled float cell.
func TestNumericCellWithoutStyleStripsTrailingZeros(t *testing.T) {
	xmlData := `<worksheet><sheetData>
		<row r="1"><c r="A1" t="n"><v>1.50000</v></c></row>
	</sheetData></worksheet>`
	sh, err := sheet.New([]byte(xmlData), nil, styles.Table{}, false, nil, sheet.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, rows := collect(t, sh)
	if rows[0][0] != "1.5" {
		t.Errorf("row[0][0] = %q, want %q", rows[0][0], "1.5")
	}
}

func TestSharedStringOutOfRangeIsValueError(t *testing.T) {
	xmlData := `<worksheet><sheetData>
		<row r="1"><c r="A1" t="s"><v>5</v></c></row>
	</sheetData></worksheet>`
	sh, err := sheet.New([]byte(xmlData), pool(t, "only"), styles.Table{}, false, nil, sheet.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = sh.Rows(func(int, []string) bool { return true })
	if err == nil {
		t.Fatal("expected ErrValue, got nil")
	}
}
