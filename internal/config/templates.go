package config

import (
	"os"

	"github.com/cockroachdb/errors"
)

// NamespaceTemplate is a starting namespace file.
const NamespaceTemplate = `# gridd namespace description
name = "NS"
chunksize = 10485760

[options]
meta2_max_versions = "1"

[storage_policies]
SINGLE = "NONE:NONE:NONE"
TWOCOPIES = "NONE:DUPONETWO:NONE"

[data_security]
DUPONETWO = "DUP:distance=1|nb_copy=2"

[data_treatments]
`

// WriteNamespaceTemplate writes NamespaceTemplate to path, refusing to
// replace an existing file unless overwrite is set.
func WriteNamespaceTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.Newf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(NamespaceTemplate), 0o600)
}
