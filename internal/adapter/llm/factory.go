package llm

import "log"

// ModeMock indicates mock mode should be used.
const ModeMock = "MOCK"

// NewFromMode creates an LLM client based on the configured mode.
// If mode is MOCK, returns a MockClient; otherwise returns a real
// OpenAI-compatible client.
func NewFromMode(mode, apiKey, baseURL, model string) Client {
	if mode == ModeMock {
		log.Println("INFO: mode=MOCK detected, using mock LLM client")
		return NewMockClient()
	}
	return NewOpenAI(apiKey, baseURL, model)
}
