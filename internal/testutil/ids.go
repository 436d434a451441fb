package testutil

// StaticIDGenerator returns the same session id every time.
//
// Unlike cart.FixedGenerator, which hands out a list once, it never runs
// out, so a test can open any number of sessions that all share one id.
type StaticIDGenerator struct {
	id string
}

// NewStaticIDGenerator returns a generator for id. An empty id becomes
// "test-session-default".
func NewStaticIDGenerator(id string) *StaticIDGenerator {
	if id == "" {
		id = "test-session-default"
	}
	return &StaticIDGenerator{id: id}
}

// Generate implements cart.IDGenerator.
func (g *StaticIDGenerator) Generate() string {
	return g.id
}
