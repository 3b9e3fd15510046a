// Package config loads the namespace description file.
package config

import (
	"bytes"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/danmuck/gridd/internal/namespace"
	"github.com/pelletier/go-toml/v2"
)

// LoadNamespaceInfo reads and validates a namespace file.
func LoadNamespaceInfo(path string) (*namespace.Info, error) {
	var info namespace.Info
	if err := loadToml(path, &info); err != nil {
		return nil, err
	}
	info.Name = strings.TrimSpace(info.Name)
	if err := ValidateNamespaceInfo(&info); err != nil {
		return nil, errors.Wrapf(err, "namespace file invalid (%s)", path)
	}
	return &info, nil
}

// ParseNamespaceInfo decodes and validates namespace TOML held in memory.
func ParseNamespaceInfo(data []byte) (*namespace.Info, error) {
	var info namespace.Info
	if err := decodeStrict(data, &info); err != nil {
		return nil, errors.Wrap(err, "namespace parse failed")
	}
	info.Name = strings.TrimSpace(info.Name)
	if err := ValidateNamespaceInfo(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "config load failed (%s)", path)
	}
	if err := decodeStrict(data, out); err != nil {
		return errors.Wrapf(err, "config parse failed (%s)", path)
	}
	return nil
}

func decodeStrict(data []byte, out any) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func ValidateNamespaceInfo(info *namespace.Info) error {
	if info == nil {
		return errors.New("namespace info missing")
	}
	if info.Name == "" {
		return errors.New("namespace info missing name")
	}
	if info.Chunksize <= 0 {
		return errors.Newf("namespace %q chunksize must be positive, got %d", info.Name, info.Chunksize)
	}
	for _, table := range []struct {
		name string
		m    map[string]string
	}{
		{"options", info.Options},
		{"storage_policies", info.StoragePolicies},
		{"data_security", info.DataSecurity},
		{"data_treatments", info.DataTreatments},
	} {
		for k := range table.m {
			if strings.TrimSpace(k) == "" {
				return errors.Newf("namespace %q has an empty key in %s", info.Name, table.name)
			}
		}
	}
	return nil
}
