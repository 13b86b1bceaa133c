package analyze

import (
	"encoding/json"
	"regexp"
	"strings"

	"curator/internal/core"
	"curator/internal/logger"
)

var (
	trailingCommaObject = regexp.MustCompile(`,\s*}`)
	trailingCommaArray  = regexp.MustCompile(`,\s*]`)
)

// ExtractCandidates recovers a structured candidate list from a raw model
// completion. Parsing is attempted directly, then once more after a repair
// pass. Unrecoverable responses degrade to an empty list; the raw text is
// kept only for diagnostic logging. Candidates echoing the worked example
// back are dropped.
func ExtractCandidates(raw string, contentType core.ContentType) []core.SuggestionCandidate {
	candidates, err := parseCandidates(raw)
	if err != nil {
		cleaned := repairJSON(raw)
		candidates, err = parseCandidates(cleaned)
		if err != nil {
			preview := raw
			if len(preview) > 200 {
				preview = preview[:200]
			}
			logger.Error("Failed to parse model response even after repair", err, "preview", preview)
			logger.Debug("Unparseable model response", "response", raw)
			return nil
		}
	}

	out := candidates[:0]
	for _, c := range candidates {
		if isExampleEcho(c) {
			logger.Warn("Dropping candidate echoed from the prompt's worked example", "topic", c.Topic)
			continue
		}
		c.ContentType = contentType
		out = append(out, c)
	}
	return out
}

func parseCandidates(text string) ([]core.SuggestionCandidate, error) {
	var candidates []core.SuggestionCandidate
	if err := json.Unmarshal([]byte(text), &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// repairJSON applies the repair pass to a near-JSON completion: isolate the
// object-array substring, strip trailing commas, normalize single-quoted
// strings to double quotes.
func repairJSON(text string) string {
	if extracted, ok := extractArray(text); ok {
		text = extracted
	}
	text = trailingCommaObject.ReplaceAllString(text, "}")
	text = trailingCommaArray.ReplaceAllString(text, "]")
	text = strings.ReplaceAll(text, "'", `"`)
	return text
}

// extractArray returns the substring bounded by the first '[' that opens an
// object and its matching ']', discarding any prose the model added around
// the array. String contents (single- or double-quoted) are skipped so
// brackets inside values do not unbalance the scan.
func extractArray(text string) (string, bool) {
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] != '[' {
			continue
		}
		j := i + 1
		for j < len(text) && (text[j] == ' ' || text[j] == '\t' || text[j] == '\n' || text[j] == '\r') {
			j++
		}
		if j < len(text) && text[j] == '{' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	depth := 0
	var quote byte
	for i := start; i < len(text); i++ {
		ch := text[i]
		if quote != 0 {
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'':
			quote = ch
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// isExampleEcho reports whether a candidate's URL matches one of the
// worked-example URLs embedded in the prompts.
func isExampleEcho(c core.SuggestionCandidate) bool {
	if c.URL == nil {
		return false
	}
	url := strings.TrimSpace(*c.URL)
	return url == exampleArticleURL || url == examplePostURL
}
