// Package namespace keeps the namespace description the daemon serves.
package namespace

import (
	"maps"
	"sync"

	"github.com/rs/zerolog/log"
)

// Info describes a namespace: its name, chunk size and the option, storage
// policy, data security and data treatment tables.
type Info struct {
	Name            string            `toml:"name" json:"name"`
	Chunksize       int64             `toml:"chunksize" json:"chunksize"`
	Options         map[string]string `toml:"options" json:"options,omitempty"`
	StoragePolicies map[string]string `toml:"storage_policies" json:"storage_policies,omitempty"`
	DataSecurity    map[string]string `toml:"data_security" json:"data_security,omitempty"`
	DataTreatments  map[string]string `toml:"data_treatments" json:"data_treatments,omitempty"`
}

// Dup returns a deep copy of i.
func (i *Info) Dup() *Info {
	if i == nil {
		return nil
	}
	return &Info{
		Name:            i.Name,
		Chunksize:       i.Chunksize,
		Options:         maps.Clone(i.Options),
		StoragePolicies: maps.Clone(i.StoragePolicies),
		DataSecurity:    maps.Clone(i.DataSecurity),
		DataTreatments:  maps.Clone(i.DataTreatments),
	}
}

// Holder guards the current namespace snapshot. Readers always get copies.
type Holder struct {
	mu   sync.RWMutex
	info *Info
}

// Set installs a copy of info. A nil info unsets the namespace.
func (h *Holder) Set(info *Info) {
	cp := info.Dup()
	h.mu.Lock()
	h.info = cp
	h.mu.Unlock()
	if cp != nil {
		log.Info().Str("ns", cp.Name).Int64("chunksize", cp.Chunksize).Msg("namespace.Set")
	} else {
		log.Info().Msg("namespace.Set cleared")
	}
}

// Name returns the namespace name, or false when no namespace is set.
func (h *Holder) Name() (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.info == nil {
		return "", false
	}
	return h.info.Name, true
}

// Info returns a copy of the current snapshot, or false when none is set.
func (h *Holder) Info() (*Info, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.info == nil {
		return nil, false
	}
	return h.info.Dup(), true
}
