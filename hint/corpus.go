package hint

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

var (
	wordRE     = regexp.MustCompile(`[\p{L}\p{N}]{2,}`)
	sentenceRE = regexp.MustCompile(`[.!?。？！]\s+`)
)

// Tokens extracts the lowercase keywords of a text. Single-character
// fragments are dropped, matching the indexing granularity of the corpus.
func Tokens(text string) []string {
	matches := wordRE.FindAllString(text, -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, strings.ToLower(m))
	}
	return tokens
}

// Mask replaces every occurrence of the given terms, case-insensitively,
// with "***". It is the single redaction pass applied to everything that
// leaves the hint boundary.
func Mask(text string, terms []string) string {
	masked := text
	for _, term := range terms {
		if term == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(term))
		if err != nil {
			continue
		}
		masked = re.ReplaceAllString(masked, "***")
	}
	return strings.TrimSpace(masked)
}

// Corpus is an indexed set of sentences extracted from the knowledge base
// document. The extraction itself happens outside this process; the corpus
// file is plain text, one or more sentences per line.
type Corpus struct {
	sentences []string
	index     map[string][]int
}

// LoadCorpus reads and indexes the corpus file. A missing or empty corpus
// is a structural fault: the local provider cannot work without it, so the
// caller is expected to treat the error as fatal at startup.
func LoadCorpus(path string) (*Corpus, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus file %s: %w", path, err)
	}
	defer file.Close()

	var sb strings.Builder
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus file %s: %w", path, err)
	}

	corpus := NewCorpus(sb.String())
	if len(corpus.sentences) == 0 {
		return nil, fmt.Errorf("corpus file %s contains no usable sentences", path)
	}
	return corpus, nil
}

// NewCorpus builds a corpus from raw text.
func NewCorpus(text string) *Corpus {
	text = strings.ReplaceAll(text, "​", " ")
	raw := sentenceRE.Split(text, -1)

	sentences := make([]string, 0, len(raw))
	for _, sentence := range raw {
		s := strings.TrimSpace(sentence)
		if len([]rune(s)) < 10 {
			continue
		}
		sentences = append(sentences, s)
	}

	index := make(map[string][]int)
	for i, sentence := range sentences {
		seen := map[string]struct{}{}
		for _, token := range Tokens(sentence) {
			if _, dup := seen[token]; dup {
				continue
			}
			seen[token] = struct{}{}
			index[token] = append(index[token], i)
		}
	}

	return &Corpus{sentences: sentences, index: index}
}

// Knows reports whether any keyword of the given text appears in the corpus.
func (c *Corpus) Knows(text string) bool {
	for _, token := range Tokens(text) {
		if _, ok := c.index[token]; ok {
			return true
		}
	}
	return false
}

// Len returns the number of indexed sentences.
func (c *Corpus) Len() int {
	return len(c.sentences)
}

// Keywords returns the sorted-by-first-occurrence keyword pool, excluding
// the given terms. Used for secret selection.
func (c *Corpus) Keywords(exclude []string) []string {
	excluded := make(map[string]struct{}, len(exclude))
	for _, term := range exclude {
		excluded[strings.ToLower(term)] = struct{}{}
	}

	firstSeen := make(map[string]int, len(c.index))
	for token, positions := range c.index {
		if _, skip := excluded[token]; skip {
			continue
		}
		if len([]rune(token)) < 3 {
			continue
		}
		firstSeen[token] = positions[0]
	}

	keywords := make([]string, 0, len(firstSeen))
	for token := range firstSeen {
		keywords = append(keywords, token)
	}
	// stable order: by first occurrence in the document, then alphabetical
	sort.Slice(keywords, func(i, j int) bool {
		a, b := keywords[i], keywords[j]
		if firstSeen[a] != firstSeen[b] {
			return firstSeen[a] < firstSeen[b]
		}
		return a < b
	})
	return keywords
}

// bestSentence picks the most relevant sentence that never mentions the
// secret or a spoiler term. Returns ("", 0) when nothing qualifies.
func (c *Corpus) bestSentence(secretTokens, submissionTokens []string, spoilers map[string]struct{}) (string, int) {
	secretSet := toSet(secretTokens)
	submissionSet := toSet(submissionTokens)

	candidates := map[int]struct{}{}
	for token := range secretSet {
		for _, i := range c.index[token] {
			candidates[i] = struct{}{}
		}
	}
	for token := range submissionSet {
		for _, i := range c.index[token] {
			candidates[i] = struct{}{}
		}
	}

	bestScore := 0
	bestIdx := -1
	for i, sentence := range c.sentences {
		if _, ok := candidates[i]; !ok {
			continue
		}
		tokens := toSet(Tokens(sentence))
		if intersects(tokens, secretSet) || intersects(tokens, spoilers) {
			continue
		}
		score := countIntersection(tokens, submissionSet) + countIntersection(tokens, secretSet)*3/2
		// earlier sentences get a slight boost so rounds vary their sources
		score += positionalBonus(i)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestIdx < 0 {
		return "", 0
	}
	return c.sentences[bestIdx], bestScore
}

func positionalBonus(idx int) int {
	bonus := 5
	for n := idx + 2; n > 1; n /= 2 {
		bonus--
	}
	if bonus < 0 {
		return 0
	}
	return bonus
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[strings.ToLower(t)] = struct{}{}
	}
	return set
}

func intersects(a, b map[string]struct{}) bool {
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}

func countIntersection(a, b map[string]struct{}) int {
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
