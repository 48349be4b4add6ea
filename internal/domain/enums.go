// Package domain defines the core types shared across the assistant.
package domain

// Role identifies the author of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// RequestState is the lifecycle state of a session's outstanding request.
type RequestState string

const (
	RequestProcessing RequestState = "processing"
	RequestCompleted  RequestState = "completed"
	RequestFailed     RequestState = "failed"
	RequestNotFound   RequestState = "not_found"
)

// Terminal reports whether the state will not change again.
func (s RequestState) Terminal() bool {
	return s == RequestCompleted || s == RequestFailed
}

// Intent is the processing path chosen for an incoming message.
type Intent string

const (
	IntentCasual        Intent = "casual"
	IntentSearchCase    Intent = "search_case"
	IntentSummarizeCase Intent = "summarize_case"
	IntentSummarize     Intent = "summarize"
	IntentGeneral       Intent = "general"
)

// NeedsRetrieval reports whether the intent starts with a vector search.
// General legal queries retrieve too; only casual chat and plain-text
// summarization skip the vector store.
func (i Intent) NeedsRetrieval() bool {
	return i == IntentSearchCase || i == IntentSummarizeCase || i == IntentGeneral
}

// AdvocacyRole selects whose side the assistant argues for.
type AdvocacyRole string

const (
	AdvocacyNone    AdvocacyRole = ""
	AdvocacyVictim  AdvocacyRole = "victim"
	AdvocacyAccused AdvocacyRole = "accused"
)
