package policy

// ScopeFile holds the operator-controlled access scope loaded from a YAML
// file. Each list names warehouse objects the server may touch; an empty or
// missing list leaves that dimension unrestricted.
type ScopeFile struct {
	Scope ScopeConfig `yaml:"scope"`
}

// ScopeConfig lists allowed object names per dimension. Entries are single
// unqualified identifiers (no dots).
type ScopeConfig struct {
	Databases []string `yaml:"databases"`
	Schemas   []string `yaml:"schemas"`
	Tables    []string `yaml:"tables"`
}
