package doctext

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
)

// Plain returns a UTF-8 text file's contents as-is.
type Plain struct{}

// ExtractText reads the file.
func (Plain) ExtractText(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "doctext: read %s", path)
	}
	return string(data), nil
}
