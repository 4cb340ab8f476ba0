// Package xlsx2csv converts an OOXML SpreadsheetML workbook into CSV.
//
// A Driver loads a workbook's cross-reference tables — shared strings,
// styles, the workbook manifest, relationships — once at construction, then
// streams each selected sheet through a sheet decoder straight to a CSV
// sink:
//
//	d, err := xlsx2csv.Open("report.xlsx", xlsx2csv.DefaultOptions())
//	if err != nil { ... }
//	defer d.Close()
//	err = d.Convert("report.csv", 1)
package xlsx2csv

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dilshod/xlsx2csv/internal/container"
	"github.com/dilshod/xlsx2csv/internal/contenttypes"
	"github.com/dilshod/xlsx2csv/internal/csvsink"
	"github.com/dilshod/xlsx2csv/internal/relationships"
	"github.com/dilshod/xlsx2csv/internal/sharedstrings"
	"github.com/dilshod/xlsx2csv/internal/sheet"
	"github.com/dilshod/xlsx2csv/internal/styles"
	"github.com/dilshod/xlsx2csv/internal/workbook"
)

// Sentinel errors, per spec §7's error kinds. Each is wrapped with context
// via fmt.Errorf's %w so callers can still errors.Is/As against these.
var (
	ErrInvalidWorkbook = fmt.Errorf("xlsx2csv: invalid workbook")
	ErrSheetNotFound   = fmt.Errorf("xlsx2csv: sheet not found")
	ErrOutFileExists   = fmt.Errorf("xlsx2csv: output file already exists")
	ErrValue           = sheet.ErrValue
	ErrOption          = csvsink.ErrOption
)

// Options is the full settings bag a caller supplies to Open/OpenReader, covering
// every flag named in spec §6's abstract CLI surface even though the CLI
// itself is out of scope for this package.
type Options struct {
	Delimiter      string // literal char, "tab", "comma", or "x<hex>"
	LineTerminator string // "\n" | "\r" | "\r\n"
	SheetDelimiter string // header line used between sheets in single-stream all-sheets mode
	Quoting        string // "none" | "minimal" | "nonnumeric" | "all"

	DateFormat      string
	TimeFormat      string
	FloatFormat     string
	ScientificFloat bool

	IncludeSheetPatterns []string
	ExcludeSheetPatterns []string
	ExcludeHiddenSheets  bool
	IncludeHiddenRows    bool
	IgnoreEmpty          bool
	SkipEmptyColumns     bool

	Escape        bool
	NoLineBreaks  bool
	Hyperlinks    bool
	MergeCells    bool
	IgnoreFormats []string

	// OutputEncoding is accepted for interface parity with spec §6's CLI
	// surface but otherwise unused: Go strings are already UTF-8, so there
	// is no transcoding step to perform for the one encoding this
	// converter emits.
	OutputEncoding string
}

// DefaultOptions returns the spec's default conversion settings.
func DefaultOptions() Options {
	return Options{
		Delimiter:      "comma",
		LineTerminator: "\n",
		SheetDelimiter: "--------",
		Quoting:        "minimal",
	}
}

// Driver holds a workbook's loaded cross-reference tables and converts
// selected sheets to CSV.
type Driver struct {
	container *container.Container
	manifest  *workbook.Manifest
	styleTbl  styles.Table
	strPool   *sharedstrings.Pool
	opts      Options

	includePatterns []*regexp.Regexp
	excludePatterns []*regexp.Regexp
	ignoreFormats   map[styles.Class]bool
}

// Open loads a workbook from a file path.
func Open(name string, opts Options) (*Driver, error) {
	c, err := container.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	return newDriver(c, opts)
}

// OpenReader loads a workbook from an in-memory ZIP archive.
func OpenReader(r io.ReaderAt, size int64, opts Options) (*Driver, error) {
	c, err := container.OpenReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	return newDriver(c, opts)
}

func newDriver(c *container.Container, opts Options) (*Driver, error) {
	ctData, _ := c.ReadAll("/[Content_Types].xml")
	types := contenttypes.Parse(ctData)

	workbookPath := types.Workbook
	if workbookPath == "" {
		workbookPath = contenttypes.DefaultWorkbookPath
	}
	manifest, err := workbook.Open(c, workbookPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}

	stylesPath := types.Styles
	if stylesPath == "" {
		stylesPath = "/xl/styles.xml"
	}
	stylesData, err := c.ReadAll(stylesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: styles: %v", ErrInvalidWorkbook, err)
	}
	styleTbl, err := styles.Parse(stylesData)
	if err != nil {
		return nil, fmt.Errorf("%w: styles: %v", ErrInvalidWorkbook, err)
	}

	sharedPath := types.SharedStrings
	if sharedPath == "" {
		sharedPath = "/xl/sharedStrings.xml"
	}
	sharedData, err := c.ReadAll(sharedPath)
	if err != nil {
		return nil, fmt.Errorf("%w: shared strings: %v", ErrInvalidWorkbook, err)
	}
	pool, err := sharedstrings.Parse(sharedData, sharedstrings.Options{
		Escape:       opts.Escape,
		NoLineBreaks: opts.NoLineBreaks,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: shared strings: %v", ErrInvalidWorkbook, err)
	}

	d := &Driver{
		container: c,
		manifest:  manifest,
		styleTbl:  styleTbl,
		strPool:   pool,
		opts:      opts,
	}

	for _, p := range opts.IncludeSheetPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: include pattern %q: %v", ErrOption, p, err)
		}
		d.includePatterns = append(d.includePatterns, re)
	}
	for _, p := range opts.ExcludeSheetPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: exclude pattern %q: %v", ErrOption, p, err)
		}
		d.excludePatterns = append(d.excludePatterns, re)
	}
	if len(opts.IgnoreFormats) > 0 {
		d.ignoreFormats = make(map[styles.Class]bool, len(opts.IgnoreFormats))
		for _, name := range opts.IgnoreFormats {
			cls, ok := styles.ParseClass(name)
			if !ok {
				return nil, fmt.Errorf("%w: ignore-formats class %q", ErrOption, name)
			}
			d.ignoreFormats[cls] = true
		}
	}

	return d, nil
}

// Close releases the workbook's underlying archive handle.
func (d *Driver) Close() error {
	return d.container.Close()
}

// SheetIDByName resolves a sheet name to its 1-based index.
func (d *Driver) SheetIDByName(name string) (int, error) {
	s, ok := d.manifest.ByName(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	return s.Index, nil
}

func (d *Driver) sheetConfig() sheet.Config {
	return sheet.Config{
		SkipHiddenRows:      !d.opts.IncludeHiddenRows,
		SkipEmptyLines:      d.opts.IgnoreEmpty,
		SkipTrailingColumns: d.opts.SkipEmptyColumns,
		Hyperlinks:          d.opts.Hyperlinks,
		MergeCells:          d.opts.MergeCells,
		DateFormat:          d.opts.DateFormat,
		TimeFormat:          d.opts.TimeFormat,
		FloatFormat:         d.opts.FloatFormat,
		ScientificFloat:     d.opts.ScientificFloat,
		IgnoreFormats:       d.ignoreFormats,
	}
}

func (d *Driver) csvConfig() (csvsink.Config, error) {
	delim, err := csvsink.ParseDelimiter(d.opts.Delimiter)
	if err != nil {
		return csvsink.Config{}, err
	}
	term, err := csvsink.ParseTerminator(d.opts.LineTerminator)
	if err != nil {
		return csvsink.Config{}, err
	}
	quoting, ok := csvsink.ParseQuoting(d.opts.Quoting)
	if !ok {
		return csvsink.Config{}, fmt.Errorf("%w: quoting %q", ErrOption, d.opts.Quoting)
	}
	return csvsink.Config{Delimiter: delim, Terminator: term, Quoting: quoting}, nil
}

// sheetRels loads a worksheet's own relationships part (used to resolve
// hyperlink r:id attributes), which lives at the conventional
// "_rels/<sheet>.xml.rels" sibling of the sheet part.
func (d *Driver) sheetRels(sheetPart string) relationships.Table {
	dir, file := filepath.Split(strings.TrimPrefix(sheetPart, "/"))
	relsPath := dir + "_rels/" + file + ".rels"
	data, err := d.container.ReadAll(relsPath)
	if err != nil || len(data) == 0 {
		return nil
	}
	rels, err := relationships.Parse(data)
	if err != nil {
		return nil
	}
	return rels
}

func (d *Driver) openSheet(s workbook.Sheet) (*sheet.Sheet, error) {
	part, err := d.manifest.ResolveSheetPart(s.Index, s.RelationID)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrSheetNotFound, s.Name, err)
	}
	data, err := d.manifest.OpenSheetPart(s.Index, s.RelationID)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrSheetNotFound, s.Name, err)
	}
	rels := d.sheetRels(part)
	return sheet.New(data, d.strPool, d.styleTbl, d.manifest.Date1904, rels, d.sheetConfig())
}

// convertSheetTo streams one sheet's rows to w as CSV.
func (d *Driver) convertSheetTo(w io.Writer, s workbook.Sheet) error {
	sh, err := d.openSheet(s)
	if err != nil {
		return err
	}
	cfg, err := d.csvConfig()
	if err != nil {
		return err
	}
	cw := csvsink.NewWriter(w, cfg)

	var writeErr error
	err = sh.Rows(func(_ int, row []string) bool {
		if err := cw.WriteRow(row); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}
	return cw.Flush()
}

func (d *Driver) matchesFilters(s workbook.Sheet) bool {
	if d.opts.ExcludeHiddenSheets && s.Visibility != workbook.Visible {
		return false
	}
	if len(d.includePatterns) > 0 {
		matched := false
		for _, re := range d.includePatterns {
			if re.MatchString(s.Name) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, re := range d.excludePatterns {
		if re.MatchString(s.Name) {
			return false
		}
	}
	return true
}

// Convert writes the selected sheet(s) to outfile.
//
// sheetSelector is either a sheet name (resolved via SheetIDByName) passed
// as a string, or a 1-based index; pass 0 to convert every sheet subject to
// the driver's include/exclude/hidden filters, per spec §4.9.
func (d *Driver) Convert(outfile string, sheetSelector any) error {
	idx, err := d.resolveSelector(sheetSelector)
	if err != nil {
		return err
	}

	if idx > 0 {
		if idx > len(d.manifest.Sheets) {
			return fmt.Errorf("%w: sheet index %d", ErrSheetNotFound, idx)
		}
		s := d.manifest.Sheets[idx-1]
		return d.convertOneToPath(outfile, s)
	}
	return d.convertAll(outfile)
}

func (d *Driver) resolveSelector(sel any) (int, error) {
	switch v := sel.(type) {
	case int:
		return v, nil
	case string:
		if v == "" {
			return 0, nil
		}
		return d.SheetIDByName(v)
	default:
		return 0, fmt.Errorf("%w: unsupported sheet selector %T", ErrOption, sel)
	}
}

func (d *Driver) convertOneToPath(outfile string, s workbook.Sheet) error {
	f, err := os.Create(outfile)
	if err != nil {
		return fmt.Errorf("xlsx2csv: create %s: %w", outfile, err)
	}
	defer f.Close()
	return d.convertSheetTo(f, s)
}

func (d *Driver) convertAll(outfile string) error {
	if info, err := os.Stat(outfile); err == nil && !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrOutFileExists, outfile)
	}

	var selected []workbook.Sheet
	for _, s := range d.manifest.Sheets {
		if d.matchesFilters(s) {
			selected = append(selected, s)
		}
	}

	if isDirLike(outfile) {
		if err := os.MkdirAll(outfile, 0o755); err != nil {
			return fmt.Errorf("xlsx2csv: mkdir %s: %w", outfile, err)
		}
		for _, s := range selected {
			path := filepath.Join(outfile, s.Name+".csv")
			if err := d.convertOneToPath(path, s); err != nil {
				return err
			}
		}
		return nil
	}

	f, err := os.Create(outfile)
	if err != nil {
		return fmt.Errorf("xlsx2csv: create %s: %w", outfile, err)
	}
	defer f.Close()
	for _, s := range selected {
		fmt.Fprintf(f, "%s%d,%s\n", d.sheetDelimiter(), s.Index, s.Name)
		if err := d.convertSheetTo(f, s); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) sheetDelimiter() string {
	if d.opts.SheetDelimiter != "" {
		return d.opts.SheetDelimiter
	}
	return "--------"
}

// isDirLike reports whether outfile names an existing directory, or a path
// with no file extension that doesn't yet exist (treated as a
// to-be-created directory, matching the all-sheets directory-mode
// convention).
func isDirLike(outfile string) bool {
	if info, err := os.Stat(outfile); err == nil {
		return info.IsDir()
	}
	return filepath.Ext(outfile) == ""
}
