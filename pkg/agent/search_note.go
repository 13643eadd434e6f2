package agent

import (
	"context"
	"path"
	"regexp"
	"sort"
	"strings"

	"vault-copilot-be/internal/pkg/logger"
	"vault-copilot-be/pkg/memory"
	"vault-copilot-be/pkg/vaultfs"
)

// Hybrid ranking weights and decay parameters.
const (
	vectorWeight       = 0.7
	keywordWeight      = 0.3
	vectorTopScore     = 0.9
	vectorRankDecay    = 0.1
	vectorFloor        = 0.3
	filenameMatchBoost = 0.2
)

var searchQueryPatterns = compilePatterns(
	`(?i)^search (?:my )?notes? (?:for|about|on) (.+)$`,
	`(?i)^search (?:for )?(.+?) in my notes$`,
	`(?i)^find (?:my )?notes? (?:about|on|for) (.+)$`,
	`(?i)^find (.+)$`,
	`(?i)^look up (.+)$`,
	`(?i)^do i have (?:any )?notes? (?:about|on) (.+)$`,
	`(?i)^(?:show|list) (?:me )?(?:my )?notes? (?:about|on) (.+)$`,
)

// SearchNoteAgent ranks vault notes against a query by fusing vector
// retrieval with a keyword scan over note bodies.
type SearchNoteAgent struct {
	retriever NoteRetriever // optional; keyword scan still runs without it
	fs        vaultfs.FileSystem
	log       logger.ILogger
}

var _ Agent = &SearchNoteAgent{}

func NewSearchNoteAgent(retriever NoteRetriever, fs vaultfs.FileSystem, log logger.ILogger) *SearchNoteAgent {
	return &SearchNoteAgent{
		retriever: retriever,
		fs:        fs,
		log:       log,
	}
}

func (a *SearchNoteAgent) Execute(ctx context.Context, message string, history []memory.Turn, actx *Context) (*Result, error) {
	if !actx.HasVault() {
		return nil, ErrNoVault
	}
	if a.fs == nil {
		return nil, ErrMissingCollaborator
	}

	query, ok := extractAfter(searchQueryPatterns, message)
	if !ok {
		query = cleanArgument(message)
	}

	// Vector and keyword retrieval run independently; either may
	// legitimately come back empty.
	vectorScores := a.vectorScores(ctx, actx, query)
	keywordScores, snippets, err := a.keywordScores(ctx, query)
	if err != nil {
		return nil, err
	}

	merged := mergeScores(vectorScores, keywordScores)
	if len(merged) == 0 {
		return nil, ErrNoResults
	}

	matches := make([]NoteMatch, 0, len(merged))
	for _, m := range merged {
		matches = append(matches, NoteMatch{
			Path:    m.path,
			Title:   noteTitle(m.path),
			Score:   m.score,
			Snippet: snippets[m.path],
		})
	}

	return NewNotesFoundResult(&NotesFound{
		Query:   query,
		Matches: matches,
	}), nil
}

// vectorScores assigns a position-decayed pseudo-similarity to ranked vector
// hits: 0.9 for the first, dropping 0.1 per rank, floored at 0.3. The
// retriever does not expose raw scores at this layer.
func (a *SearchNoteAgent) vectorScores(ctx context.Context, actx *Context, query string) map[string]float64 {
	scores := map[string]float64{}
	if a.retriever == nil {
		return scores
	}

	paths, err := a.retriever.RetrieveNotes(ctx, actx.VaultID, query, actx.Settings.TopK)
	if err != nil {
		a.log.Warn("search_note", "vector retrieval failed, keyword-only", map[string]interface{}{"error": err.Error()})
		return scores
	}

	for i, p := range paths {
		score := vectorTopScore - float64(i)*vectorRankDecay
		if score < vectorFloor {
			score = vectorFloor
		}
		if _, seen := scores[p]; !seen {
			scores[p] = score
		}
	}
	return scores
}

// keywordScores scans every markdown body in the vault. A file scores
// matchedTokens/totalTokens, boosted by 0.2 when any query token appears in
// the filename, clamped to [0,1]. Zero-score files are dropped.
func (a *SearchNoteAgent) keywordScores(ctx context.Context, query string) (map[string]float64, map[string]string, error) {
	tokens := queryTokens(query)
	scores := map[string]float64{}
	snippets := map[string]string{}
	if len(tokens) == 0 {
		return scores, snippets, nil
	}

	paths, err := a.fs.List(ctx, ".")
	if err != nil {
		return nil, nil, err
	}

	for _, p := range paths {
		if !strings.HasSuffix(strings.ToLower(p), ".md") {
			continue
		}
		body, err := a.fs.Read(ctx, p)
		if err != nil {
			a.log.Warn("search_note", "unreadable note skipped", map[string]interface{}{"path": p, "error": err.Error()})
			continue
		}

		lowerBody := strings.ToLower(body)
		lowerName := strings.ToLower(path.Base(p))

		matched := 0
		inName := false
		for _, tok := range tokens {
			if strings.Contains(lowerBody, tok) {
				matched++
			}
			if strings.Contains(lowerName, tok) {
				inName = true
			}
		}
		if matched == 0 && !inName {
			continue
		}

		score := float64(matched) / float64(len(tokens))
		if inName {
			score += filenameMatchBoost
		}
		scores[p] = clamp01(score)
		snippets[p] = firstMatchingLine(body, tokens)
	}

	return scores, snippets, nil
}

type rankedNote struct {
	path  string
	score float64
}

// mergeScores fuses both sources by file path. A file present in only one
// source receives only that source's weighted contribution. Ordering is
// descending by combined score, with path as the deterministic tie-break.
func mergeScores(vector, keyword map[string]float64) []rankedNote {
	combined := map[string]float64{}
	for p, v := range vector {
		combined[p] = v * vectorWeight
	}
	for p, k := range keyword {
		combined[p] += k * keywordWeight
	}

	ranked := make([]rankedNote, 0, len(combined))
	for p, s := range combined {
		ranked = append(ranked, rankedNote{path: p, score: clamp01(s)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].path < ranked[j].path
	})
	return ranked
}

var tokenSplit = regexp.MustCompile(`[^\p{L}\p{N}]+`)

func queryTokens(query string) []string {
	raw := tokenSplit.Split(strings.ToLower(query), -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func firstMatchingLine(body string, tokens []string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		for _, tok := range tokens {
			if strings.Contains(lower, tok) {
				return truncateRunes(trimmed, 160)
			}
		}
	}
	return ""
}

func noteTitle(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
