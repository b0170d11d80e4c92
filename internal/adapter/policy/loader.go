package policy

import (
	"fmt"
	"os"
	"strings"

	"github.com/guillermoBallester/snowgate/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// LoadFromFile reads a YAML scope file and returns a validated ScopeFile.
func LoadFromFile(path string) (*ScopeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scope file: %w", err)
	}

	var sf ScopeFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing scope YAML: %w", err)
	}

	if err := validate(&sf); err != nil {
		return nil, fmt.Errorf("validating scope: %w", err)
	}

	return &sf, nil
}

func validate(sf *ScopeFile) error {
	for dim, list := range map[string][]string{
		"databases": sf.Scope.Databases,
		"schemas":   sf.Scope.Schemas,
		"tables":    sf.Scope.Tables,
	} {
		for _, entry := range list {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				return fmt.Errorf("scope.%s contains an empty entry", dim)
			}
			qn, err := domain.ParseQualifiedName(entry)
			if err != nil {
				return fmt.Errorf("scope.%s entry %q: %w", dim, entry, err)
			}
			if qn.Database != "" || qn.Schema != "" {
				return fmt.Errorf("scope.%s entry %q: must be a single unqualified name", dim, entry)
			}
		}
	}
	return nil
}

// Merge unions the file scope with lists from the environment. Duplicates
// are harmless; AccessScope deduplicates on construction.
func Merge(sf *ScopeFile, databases, schemas, tables []string) (d, s, t []string) {
	d = append(append([]string(nil), databases...), sf.Scope.Databases...)
	s = append(append([]string(nil), schemas...), sf.Scope.Schemas...)
	t = append(append([]string(nil), tables...), sf.Scope.Tables...)
	return d, s, t
}
