package testutil

// FixedOpIDGenerator returns the same operation id every time.
//
// Facade operations stamp their log lines with an id; a fixed id keeps
// captured logs deterministic.
//
// Thread-safety: FixedOpIDGenerator is stateless and safe for concurrent use.
type FixedOpIDGenerator struct {
	id string
}

// NewFixedOpIDGenerator creates a generator returning id. An empty id
// becomes "test-op".
func NewFixedOpIDGenerator(id string) *FixedOpIDGenerator {
	if id == "" {
		id = "test-op"
	}
	return &FixedOpIDGenerator{id: id}
}

// Generate returns the fixed id.
func (g *FixedOpIDGenerator) Generate() string {
	return g.id
}
