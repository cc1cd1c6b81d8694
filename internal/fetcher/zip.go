package fetcher

import (
	"archive/zip"
	"io"

	"github.com/rotisserie/eris"
)

// MaxZIPEntryBytes caps how much of a single archive entry is read into
// memory.
const MaxZIPEntryBytes = 32 << 20

// ReadZIPEntry returns the content of one named entry of a ZIP archive
// (OOXML documents are ZIP containers).
func ReadZIPEntry(zipPath, name string) ([]byte, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if f.Name == name {
			return readZIPEntry(f)
		}
	}

	return nil, eris.Errorf("zip: file %q not found in archive", name)
}

func readZIPEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, eris.Wrap(err, "zip: open entry")
	}
	defer rc.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(rc, MaxZIPEntryBytes+1))
	if err != nil {
		return nil, eris.Wrap(err, "zip: read entry")
	}
	if len(data) > MaxZIPEntryBytes {
		return nil, eris.Errorf("zip: entry %q exceeds %d bytes", f.Name, MaxZIPEntryBytes)
	}
	return data, nil
}
