package hint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ExternalProvider asks a hosted chat-completions endpoint for hints and
// secrets. Any transport error, bad status, or unparsable body is returned
// as-is; the coordinator decides what to do with it.
type ExternalProvider struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

func NewExternalProvider(endpoint, apiKey, model string, timeout time.Duration) *ExternalProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &ExternalProvider{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type hintReply struct {
	Hint  string   `json:"hint"`
	Score int      `json:"score"`
	Flags []string `json:"flags"`
}

type secretReply struct {
	Secret    string `json:"secret"`
	Theme     string `json:"theme"`
	Rationale string `json:"rationale"`
}

func (p *ExternalProvider) GenerateHint(ctx context.Context, req Request) (Result, error) {
	system := "You are the game master of a Korean word-association party game. " +
		"Compose one short, indirect hint that helps the player approach the secret word " +
		"WITHOUT ever writing the secret word or a trivial variation of it. " +
		`Respond ONLY with JSON: {"hint": "...", "score": 0-3, "flags": ["..."]}`

	payload, _ := json.Marshal(map[string]any{
		"round":      req.Round,
		"secretWord": req.Secret,
		"player":     req.PlayerName,
		"submission": req.Word,
		"flags":      req.Flags,
		"allWords":   req.AllWords,
	})

	content, err := p.callChat(ctx, []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: string(payload)},
	})
	if err != nil {
		return Result{}, err
	}

	var reply hintReply
	if err := json.Unmarshal([]byte(cleanJSONResponse(content)), &reply); err != nil {
		return Result{}, fmt.Errorf("parse hint reply: %w (raw=%s)", err, content)
	}
	if reply.Hint == "" {
		return Result{}, fmt.Errorf("empty hint in reply: %s", content)
	}

	flags := req.Flags
	if len(reply.Flags) > 0 {
		flags = mergeFlags(req.Flags, reply.Flags)
	}

	return Result{
		Hint:        reply.Hint,
		AdviceScore: reply.Score,
		Flags:       flags,
		Source:      SourceExternal,
	}, nil
}

func (p *ExternalProvider) ChooseSecret(ctx context.Context, round int, used []string) (SecretChoice, error) {
	system := "Pick a single secret keyword for a Korean word-association party game. " +
		"Avoid words already used in previous rounds. " +
		`Respond ONLY with JSON: {"secret": "...", "theme": "...", "rationale": "..."}`

	payload, _ := json.Marshal(map[string]any{
		"round":       round,
		"usedSecrets": used,
	})

	content, err := p.callChat(ctx, []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: string(payload)},
	})
	if err != nil {
		return SecretChoice{}, err
	}

	var reply secretReply
	if err := json.Unmarshal([]byte(cleanJSONResponse(content)), &reply); err != nil {
		return SecretChoice{}, fmt.Errorf("parse secret reply: %w (raw=%s)", err, content)
	}
	if strings.TrimSpace(reply.Secret) == "" {
		return SecretChoice{}, fmt.Errorf("empty secret in reply: %s", content)
	}

	return SecretChoice{
		Secret:    strings.TrimSpace(reply.Secret),
		Theme:     reply.Theme,
		Rationale: reply.Rationale,
		Source:    SourceExternal,
	}, nil
}

func (p *ExternalProvider) callChat(ctx context.Context, messages []chatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("provider error status: %s", resp.Status)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("no choices in provider response")
	}
	return cr.Choices[0].Message.Content, nil
}

// cleanJSONResponse strips the markdown code fences some models wrap JSON in.
func cleanJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func mergeFlags(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	merged := make([]string, 0, len(a)+len(b))
	for _, f := range append(append([]string{}, a...), b...) {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		merged = append(merged, f)
	}
	return merged
}
