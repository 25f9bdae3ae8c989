package hint

import (
	"encoding/json"
	"fmt"
	"os"
)

// Rules is the static moderation rule set: forbidden terms are banned
// outright, spoilers are near-synonyms of likely secrets and get the same
// redaction treatment as the secret itself.
type Rules struct {
	Forbidden []string `json:"forbidden"`
	Spoilers  []string `json:"spoilers"`
	Noise     []string `json:"noise"`
}

func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file %s: %w", path, err)
	}
	rules := &Rules{}
	if err := json.Unmarshal(data, rules); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	return rules, nil
}
