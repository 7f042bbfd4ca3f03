// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads contact addresses and API keys from a directory of
// plain-text files. Each file is one secret: the filename is the key and the
// trimmed contents are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Recognized secret file names.
const (
	UnpaywallEmail = "unpaywall-email"
	PubMedEmail    = "pubmed-email"
	PubMedAPIKey   = "pubmed-api-key"
	CrossrefMailto = "crossref-mailto"
)

// Set maps secret names to values.
type Set map[string]string

// Load reads every regular, non-hidden file in dir. A missing directory is
// not an error and yields an empty Set. Unreadable files are logged and
// skipped.
func Load(dir string, log zerolog.Logger) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	set := make(Set)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn().Str("secret", name).Err(err).Msg("could not read secret")
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			set[name] = value
		}
	}
	return set, nil
}

// Fill copies the secret named key into dst when dst is empty and the secret
// exists. It reports whether dst was written.
func (s Set) Fill(dst *string, key string) bool {
	if *dst != "" {
		return false
	}
	v, ok := s[key]
	if !ok {
		return false
	}
	*dst = v
	return true
}

// Keys returns the secret names in sorted order, never the values.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
