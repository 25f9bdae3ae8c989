package hint

import (
	"context"
	"fmt"
)

// LocalProvider composes hints by extracting sentences from the indexed
// corpus. It is deterministic and never fails, which makes it the terminal
// stage of the fallback chain.
type LocalProvider struct {
	corpus *Corpus
	rules  *Rules
}

func NewLocalProvider(corpus *Corpus, rules *Rules) *LocalProvider {
	return &LocalProvider{corpus: corpus, rules: rules}
}

func (p *LocalProvider) GenerateHint(_ context.Context, req Request) (Result, error) {
	secretTokens := Tokens(req.Secret)
	submissionTokens := Tokens(req.Word)
	spoilers := toSet(p.rules.Spoilers)

	sentence, relevance := p.corpus.bestSentence(secretTokens, submissionTokens, spoilers)

	var hintText string
	advice := 1
	if sentence == "" {
		hintText = p.fallbackHint(req.Word)
		if req.Word == "" {
			advice = 0
		}
	} else {
		terms := append([]string{req.Secret}, p.rules.Spoilers...)
		hintText = Mask(sentence, terms)
		if relevance > 1 {
			advice = 2
		}
	}

	return Result{
		Hint:        hintText,
		AdviceScore: advice,
		Flags:       req.Flags,
		Source:      SourceLocal,
	}, nil
}

func (p *LocalProvider) fallbackHint(word string) string {
	if word == "" {
		return "이번에는 단서를 찾지 못했어요. 다음 라운드에는 자료에서 떠오르는 핵심 개념을 짚어보세요."
	}
	return fmt.Sprintf("제출한 단어 '%s'에서 파생된 주제를 다시 살펴보세요. 자료의 다른 장에서 간접적인 실마리를 찾을 수 있습니다.", word)
}

// ChooseSecret deterministically spreads picks across the corpus keyword
// pool, skipping used secrets and rule-listed terms.
func (p *LocalProvider) ChooseSecret(_ context.Context, round int, used []string) (SecretChoice, error) {
	exclude := make([]string, 0, len(used)+len(p.rules.Forbidden)+len(p.rules.Spoilers))
	exclude = append(exclude, used...)
	exclude = append(exclude, p.rules.Forbidden...)
	exclude = append(exclude, p.rules.Spoilers...)

	pool := p.corpus.Keywords(exclude)
	if len(pool) == 0 {
		return SecretChoice{}, fmt.Errorf("corpus keyword pool exhausted after %d rounds", round-1)
	}

	secret := pool[(round*31)%len(pool)]
	return SecretChoice{
		Secret:    secret,
		Theme:     "자료 핵심 개념",
		Rationale: "강의 자료에서 추출한 키워드입니다.",
		Source:    SourceLocal,
	}, nil
}
