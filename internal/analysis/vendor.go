package analysis

import (
	"path/filepath"
	"strings"

	"github.com/sells-group/proposal-analyzer/internal/normalize"
)

const unknownVendor = "Desconhecido"

// VendorFor names the vendor an upload belongs to. An explicit vendor wins;
// otherwise a known vendor whose name appears in the filename (ignoring case
// and accents); otherwise the filename token before the first underscore,
// title-cased.
func VendorFor(u Upload, known []string) string {
	if v := strings.TrimSpace(u.Vendor); v != "" {
		return v
	}

	base := filepath.Base(u.Filename)
	for _, k := range known {
		if strings.TrimSpace(k) != "" && normalize.ContainsAny(base, k) {
			return k
		}
	}

	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.Index(stem, "_"); i > 0 {
		stem = stem[:i]
	}
	stem = strings.TrimSpace(strings.Trim(stem, "_"))
	if stem == "" {
		return unknownVendor
	}
	return normalize.TitleCase(stem)
}
