package hint

import (
	"context"
	"time"

	"github.com/Ohjackson/Aj-ruKaisen/shared/logger"
)

// Coordinator tries the external agent first, under a bounded timeout, and
// falls back to the local provider on any failure or when no external
// agent is configured. It never returns an error and never blocks past the
// timeout: a round must not stall on the external capability.
//
// Every hint additionally goes through one uniform masking pass, whichever
// provider produced it.
type Coordinator struct {
	external Agent // nil when disabled
	local    *LocalProvider
	rules    *Rules
	timeout  time.Duration
}

func NewCoordinator(external Agent, local *LocalProvider, rules *Rules, timeout time.Duration) *Coordinator {
	return &Coordinator{
		external: external,
		local:    local,
		rules:    rules,
		timeout:  timeout,
	}
}

func (c *Coordinator) GenerateHint(ctx context.Context, req Request) Result {
	if c.external != nil {
		extCtx, cancel := context.WithTimeout(ctx, c.timeout)
		result, err := c.external.GenerateHint(extCtx, req)
		cancel()
		if err == nil {
			return c.sealed(result, req.Secret)
		}
		logger.Warningf("external hint provider failed, falling back: %v", err)
	}

	result, _ := c.local.GenerateHint(ctx, req)
	return c.sealed(result, req.Secret)
}

func (c *Coordinator) ChooseSecret(ctx context.Context, round int, used []string) (SecretChoice, error) {
	if c.external != nil {
		extCtx, cancel := context.WithTimeout(ctx, c.timeout)
		choice, err := c.external.ChooseSecret(extCtx, round, used)
		cancel()
		if err == nil {
			return choice, nil
		}
		logger.Warningf("external secret selection failed, falling back: %v", err)
	}
	return c.local.ChooseSecret(ctx, round, used)
}

// sealed applies the masking invariant to a result before it crosses the
// hint boundary.
func (c *Coordinator) sealed(result Result, secret string) Result {
	terms := append([]string{secret}, c.rules.Spoilers...)
	result.Hint = Mask(result.Hint, terms)
	return result
}
