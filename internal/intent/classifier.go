// Package intent routes an incoming message to a processing path using
// fixed heuristics. Classification is a pure function of the message text
// and never fails; anything unmatched falls through to the general path.
package intent

import (
	"regexp"
	"strings"

	"github.com/jurisol/jurisol/internal/domain"
)

// casualPattern matches greetings and small talk anchored at the start of
// the message. Casual messages bypass retrieval entirely.
var casualPattern = regexp.MustCompile(`(?i)^\s*(hi|hii+|hello|hey|yo|namaste|greetings|good\s+(morning|afternoon|evening|day|night)|how\s+are\s+you|how's\s+it\s+going|what's\s+up|nice\s+to\s+meet\s+you|thanks|thank\s+you|ok(ay)?|bye|goodbye|see\s+you)\b`)

// legalVocabulary marks a message as a legal query when any term appears.
var legalVocabulary = map[string]struct{}{
	"section": {}, "act": {}, "law": {}, "laws": {}, "court": {}, "legal": {},
	"case": {}, "judgment": {}, "judgement": {}, "petition": {}, "bail": {},
	"appeal": {}, "divorce": {}, "property": {}, "contract": {}, "rights": {},
	"procedure": {}, "remedy": {}, "criminal": {}, "civil": {},
	"constitutional": {}, "ipc": {}, "crpc": {}, "cpc": {}, "fir": {},
	"writ": {}, "statute": {}, "offence": {}, "offense": {}, "penalty": {},
	"accused": {}, "victim": {}, "lawyer": {}, "advocate": {}, "tax": {},
	"labour": {}, "corporate": {}, "family": {}, "summarize": {},
	"summarise": {},
}

// Messages longer than this are assumed to be legal queries even without a
// vocabulary hit, to avoid false negatives on long questions.
const longQueryWords = 10

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Classify maps a message to its Intent.
func Classify(message string) domain.Intent {
	if casualPattern.MatchString(message) {
		return domain.IntentCasual
	}
	if !isLegal(message) {
		return domain.IntentCasual
	}
	return subIntent(message)
}

func isLegal(message string) bool {
	words := wordPattern.FindAllString(strings.ToLower(message), -1)
	if len(words) > longQueryWords {
		return true
	}
	for _, w := range words {
		if _, ok := legalVocabulary[w]; ok {
			return true
		}
	}
	return false
}

func subIntent(message string) domain.Intent {
	lowered := strings.ToLower(message)
	hasCase := strings.Contains(lowered, "case")
	hasJudgment := strings.Contains(lowered, "judgment") || strings.Contains(lowered, "judgement")
	hasSummarize := strings.Contains(lowered, "summarize") || strings.Contains(lowered, "summarise")

	switch {
	case (hasCase || hasJudgment) && hasSummarize:
		return domain.IntentSummarizeCase
	case hasCase || hasJudgment:
		return domain.IntentSearchCase
	case hasSummarize:
		return domain.IntentSummarize
	default:
		return domain.IntentGeneral
	}
}
