package hint

import "context"

const (
	SourceLocal    = "local"
	SourceExternal = "external"
)

// Request carries everything a provider may use to compose one player's
// hint for one round. The secret never leaves this package unmasked.
type Request struct {
	Round      int
	Secret     string
	PlayerName string
	Word       string
	Flags      []string
	AllWords   []string
}

// Result is a provider's answer. AdviceScore is informational only; the
// scoring engine's deterministic formula stays authoritative.
type Result struct {
	Hint        string
	AdviceScore int
	Flags       []string
	Source      string
}

// SecretChoice describes a provider-selected round secret together with
// broadcast-safe metadata (the secret itself is never broadcast).
type SecretChoice struct {
	Secret    string
	Theme     string
	Rationale string
	Source    string
}

// Provider is the hint-generation capability. Implementations are
// interchangeable; the coordinator decides which one answers.
type Provider interface {
	GenerateHint(ctx context.Context, req Request) (Result, error)
}

// SecretChooser picks a fresh secret for a round, avoiding already-used
// ones.
type SecretChooser interface {
	ChooseSecret(ctx context.Context, round int, used []string) (SecretChoice, error)
}

// Agent is a provider that can also run secret selection. Both the local
// engine and the external client implement it.
type Agent interface {
	Provider
	SecretChooser
}
