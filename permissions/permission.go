// Package permissions maps chi route templates to the roles allowed to call them. Rules live
// in the embedded permissions.json.
package permissions

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var embedded []byte

type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

// PermissionData holds per-endpoint rules. When no endpoint matches, the default with the
// longest matching path prefix applies.
type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Defaults  []Permission `json:"defaults"`
	Skip      bool         `json:"skip"`

	index map[string]Permission
}

// Load decodes and indexes a rule set.
func Load(raw []byte) (*PermissionData, error) {
	data := &PermissionData{}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("failed to decode permissions: %w", err)
	}

	data.index = make(map[string]Permission, len(data.Endpoints))

	for i, endpoint := range data.Endpoints {
		method := strings.ToUpper(endpoint.Method)
		if method == "" {
			return nil, fmt.Errorf("endpoint %s has no method", endpoint.Path)
		}

		key := indexKey(normalize(endpoint.Path), method)
		if _, dup := data.index[key]; dup {
			return nil, fmt.Errorf("duplicate rule for %s", key)
		}

		data.Endpoints[i].Method = method
		data.index[key] = data.Endpoints[i]
	}

	for i := range data.Defaults {
		data.Defaults[i].Path = normalize(data.Defaults[i].Path)
	}

	slices.SortStableFunc(data.Defaults, func(a, b Permission) int {
		return len(b.Path) - len(a.Path)
	})

	return data, nil
}

func (r *PermissionData) FindPermissions(path, method string) Permission {
	path = normalize(path)

	if rule, ok := r.index[indexKey(path, method)]; ok {
		return rule
	}

	for _, rule := range r.Defaults {
		if path == rule.Path || strings.HasPrefix(path, rule.Path+"/") {
			return rule
		}
	}

	return Permission{}
}

func indexKey(path, method string) string {
	return method + " " + path
}

func normalize(path string) string {
	path = strings.TrimSuffix(path, "/*")

	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	return path
}

var loadEmbedded = sync.OnceValue(func() *PermissionData {
	data, err := Load(embedded)
	if err != nil {
		log.Error().Err(err).Msg("embedded permissions are invalid, protected routes will deny everyone")

		return nil
	}

	log.Info().Int("endpoints", len(data.Endpoints)).Int("defaults", len(data.Defaults)).Msg("permissions loaded")

	return data
})

// Get returns the embedded rule set, or nil when it cannot be decoded.
func Get() *PermissionData {
	return loadEmbedded()
}

