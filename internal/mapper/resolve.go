package mapper

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Resolution tier labels, reported back in the ingestion result.
const (
	TierCaseConfig   = "yaml_case"
	TierSharedConfig = "yaml_builtin"
	TierBuiltin      = "builtin"
	TierGeneric      = "generic"
)

//go:embed configs/*.yaml
var bundledFS embed.FS

// builtins maps well-known source names to their hand-coded mappers.
var builtins = map[string]func() Mapper{
	"splunk":     func() Mapper { return SplunkMapper{} },
	"kusto":      func() Mapper { return KustoMapper{} },
	"cloudtrail": func() Mapper { return CloudTrailMapper{} },
	"aws":        func() Mapper { return CloudTrailMapper{} },
	"okta":       func() Mapper { return OktaMapper{} },
}

// Resolver selects the mapper for a (source, case) pair. Resolution
// order, first match wins:
//
//  1. case-scoped YAML config   (<case dir>/mappers/<source>.yaml)
//  2. shared YAML config        (bundled, or the injected Shared FS)
//  3. source-specific built-in mapper
//  4. generic fallback
//
// A malformed config never fails resolution; the chain falls through to
// the next tier.
type Resolver struct {
	// Shared overrides the bundled shared-config tier. Nil uses the
	// configs compiled into the binary.
	Shared fs.FS
}

// Resolve returns the bound mapper and its tier label. Mappers are
// loaded fresh per call; nothing is cached across ingestion runs.
func (r *Resolver) Resolve(source, caseDir string) (Mapper, string) {
	name := strings.ToLower(source)

	if caseDir != "" {
		path := filepath.Join(caseDir, "mappers", name+".yaml")
		if _, err := os.Stat(path); err == nil {
			if m, err := LoadConfigMapper(path); err == nil {
				return m, TierCaseConfig
			}
		}
	}

	if data, err := fs.ReadFile(r.shared(), name+".yaml"); err == nil {
		if m, err := ParseConfigMapper(data); err == nil {
			if m.source == "" {
				m.source = name
			}
			return m, TierSharedConfig
		}
	}

	if build, ok := builtins[name]; ok {
		return build(), TierBuiltin
	}

	return GenericMapper{}, TierGeneric
}

func (r *Resolver) shared() fs.FS {
	if r.Shared != nil {
		return r.Shared
	}
	sub, err := fs.Sub(bundledFS, "configs")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	return sub
}
