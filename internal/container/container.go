// Package container opens the ZIP archive backing an xlsx workbook and
// exposes case-insensitive, leading-slash-tolerant lookup of its named parts.
package container

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
)

// Container wraps an open zip archive and indexes its entries by a
// normalized name so that part lookups are case-insensitive and tolerant of
// a leading slash, matching the loose addressing real-world workbooks use.
type Container struct {
	zr    *zip.ReadCloser // non-nil when opened from a file path
	zf    *zip.Reader     // always non-nil
	index map[string]*zip.File
}

// Open opens the named .xlsx file.
func Open(name string) (*Container, error) {
	rc, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("container: open %q: %w", name, err)
	}
	c := &Container{zr: rc, zf: &rc.Reader}
	c.build()
	return c, nil
}

// OpenReader opens an .xlsx workbook from an in-memory ReaderAt.
// size must be the total byte size of the ZIP data.
func OpenReader(r io.ReaderAt, size int64) (*Container, error) {
	zf, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("container: open reader: %w", err)
	}
	c := &Container{zf: zf}
	c.build()
	return c, nil
}

func (c *Container) build() {
	c.index = make(map[string]*zip.File, len(c.zf.File))
	for _, f := range c.zf.File {
		c.index[normalize(f.Name)] = f
	}
}

func normalize(name string) string {
	name = strings.TrimPrefix(name, "/")
	return strings.ToLower(name)
}

// Open returns a byte stream for the named part, or nil if the part is
// absent. Lookup is case-insensitive and tolerates a leading "/".
func (c *Container) Open(partPath string) (io.ReadCloser, error) {
	f, ok := c.index[normalize(partPath)]
	if !ok {
		return nil, nil
	}
	return f.Open()
}

// Has reports whether the named part exists in the archive.
func (c *Container) Has(partPath string) bool {
	_, ok := c.index[normalize(partPath)]
	return ok
}

// ReadAll reads the full contents of the named part. It returns (nil, nil)
// if the part does not exist.
func (c *Container) ReadAll(partPath string) ([]byte, error) {
	rc, err := c.Open(partPath)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, nil
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("container: read %q: %w", partPath, err)
	}
	return data, nil
}

// Close releases the underlying ZIP file handle. It is a no-op when the
// container was opened via OpenReader.
func (c *Container) Close() error {
	if c.zr != nil {
		return c.zr.Close()
	}
	return nil
}
