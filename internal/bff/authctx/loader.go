package authctx

import (
	"embed"
	"encoding/json"
	"fmt"

	"schoolbff/internal/bff/model"
)

//go:embed carriers/auth_contexts.json
var carriersFS embed.FS

var knownContexts = []model.AuthContext{
	model.AuthContextDefault,
	model.AuthContextTenant,
	model.AuthContextSuperAdmin,
}

// Loader loads the credential carrier table from the embedded JSON file.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

// LoadCarrierSets reads the embedded table.
func (l *Loader) LoadCarrierSets() (map[model.AuthContext]*CarrierSet, error) {
	data, err := carriersFS.ReadFile("carriers/auth_contexts.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read auth_contexts.json: %w", err)
	}
	return ParseCarrierSets(data)
}

// ParseCarrierSets decodes and checks a carrier table. Every AuthContext must
// be present with at least one tenant and one token source.
func ParseCarrierSets(data []byte) (map[model.AuthContext]*CarrierSet, error) {
	var file carrierFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse carrier table: %w", err)
	}

	sets := make(map[model.AuthContext]*CarrierSet, len(file.Contexts))
	for _, set := range file.Contexts {
		if _, dup := sets[set.Context]; dup {
			return nil, fmt.Errorf("duplicate carrier set for %s", set.Context)
		}
		for i := range set.TenantSources {
			if err := set.TenantSources[i].parse(); err != nil {
				return nil, fmt.Errorf("%s tenant sources: %w", set.Context, err)
			}
		}
		for i := range set.TokenSources {
			if err := set.TokenSources[i].parse(); err != nil {
				return nil, fmt.Errorf("%s token sources: %w", set.Context, err)
			}
		}
		sets[set.Context] = set
	}

	for _, ac := range knownContexts {
		set, ok := sets[ac]
		if !ok {
			return nil, fmt.Errorf("missing carrier set for %s", ac)
		}
		if len(set.TenantSources) == 0 || len(set.TokenSources) == 0 {
			return nil, fmt.Errorf("carrier set for %s needs tenant and token sources", ac)
		}
	}
	return sets, nil
}
