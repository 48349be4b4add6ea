package service

import "github.com/jurisol/jurisol/internal/domain"

// estimateTokens approximates the token cost of a message as one token per
// four characters, matching the coarse budgeting the providers themselves
// suggest.
func estimateTokens(content string) int {
	return len(content) / 4
}

// TrimHistory bounds a conversation to roughly budget tokens. The leading
// system message always survives; after that the newest messages are kept
// and the oldest dropped. Trimming an already-fitting history returns an
// equal history, so the operation is idempotent.
func TrimHistory(history []domain.Message, budget int) []domain.Message {
	if budget <= 0 || len(history) == 0 {
		return history
	}

	var system *domain.Message
	rest := history
	if history[0].Role == domain.RoleSystem {
		system = &history[0]
		rest = history[1:]
	}

	total := 0
	if system != nil {
		total += estimateTokens(system.Content)
	}
	for _, m := range rest {
		total += estimateTokens(m.Content)
	}
	if total <= budget {
		return history
	}

	// Walk from the newest message back, keeping what fits.
	remaining := budget
	if system != nil {
		remaining -= estimateTokens(system.Content)
	}
	start := len(rest)
	for i := len(rest) - 1; i >= 0; i-- {
		cost := estimateTokens(rest[i].Content)
		if cost > remaining {
			break
		}
		remaining -= cost
		start = i
	}

	trimmed := make([]domain.Message, 0, len(rest)-start+1)
	if system != nil {
		trimmed = append(trimmed, *system)
	}
	trimmed = append(trimmed, rest[start:]...)
	return trimmed
}
