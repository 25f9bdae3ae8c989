package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Mode selects how a game is driven: "classic" has the host typing each
// round's secret, "ai" lets the hint provider pick secrets and requires a
// ready check before start.
type Mode string

const (
	ModeClassic Mode = "classic"
	ModeAI      Mode = "ai"
)

type Config struct {
	Port           string
	GinMode        string
	Debug          bool
	AllowedOrigins []string

	Mode       Mode
	MaxRounds  int
	MaxPlayers int
	MinPlayers int

	SubmissionDuration time.Duration
	DiscussionDuration time.Duration
	TransitionDuration time.Duration

	AIEnabled  bool
	AIEndpoint string
	AIKey      string
	AIModel    string
	AITimeout  time.Duration

	CorpusPath string
	RulesPath  string

	// ForbiddenScoreFloor is the round-score floor applied to submissions
	// flagged forbidden: 0 by default, -1 when the harsher rule is wanted.
	ForbiddenScoreFloor  int
	ResetScoresOnRematch bool

	ReconnectTokenKey string
	TokenMaxAge       time.Duration
}

// Load reads .env (when present) and the process environment into a Config.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:           getString("PORT", "8000"),
		GinMode:        getString("GIN_MODE", ""),
		Debug:          getBool("DEBUG", false),
		AllowedOrigins: getList("ALLOWED_ORIGINS", []string{"*"}),

		Mode:       Mode(getString("GAME_MODE", string(ModeClassic))),
		MaxRounds:  getInt("MAX_ROUNDS", 3),
		MaxPlayers: getInt("MAX_PLAYERS", 5),
		MinPlayers: getInt("MIN_PLAYERS", 2),

		SubmissionDuration: getSeconds("SUBMISSION_SECONDS", 45),
		DiscussionDuration: getSeconds("DISCUSSION_SECONDS", 45),
		TransitionDuration: getSeconds("TRANSITION_SECONDS", 12),

		AIEnabled:  getBool("AI_HINTS_ENABLED", true),
		AIEndpoint: getString("AI_API_ENDPOINT", ""),
		AIKey:      getString("AI_API_KEY", ""),
		AIModel:    getString("AI_MODEL", ""),
		AITimeout:  getSeconds("AI_TIMEOUT_SECONDS", 3),

		CorpusPath: getString("AI_CORPUS_PATH", "docs/corpus.txt"),
		RulesPath:  getString("AI_RULES_PATH", "docs/rules.json"),

		ForbiddenScoreFloor:  getInt("FORBIDDEN_SCORE_FLOOR", 0),
		ResetScoresOnRematch: getBool("RESET_SCORES_ON_REMATCH", false),

		ReconnectTokenKey: getString("RECONNECT_TOKEN_KEY", ""),
		TokenMaxAge:       getSeconds("TOKEN_MAX_AGE_SECONDS", int((24 * time.Hour).Seconds())),
	}
}

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

func getSeconds(key string, fallback int) time.Duration {
	return time.Duration(getInt(key, fallback)) * time.Second
}

func getBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
