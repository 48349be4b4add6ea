package service

import (
	"fmt"
	"strings"

	"github.com/jurisol/jurisol/internal/domain"
)

const systemPrompt = `You are Jurisol, a legal assistant for Indian law. You answer questions about statutes, case law and legal procedure using the reference material supplied with each question.

Rules:
- Ground every answer in the supplied reference material when it is present. Cite section numbers and act names exactly as they appear.
- When no reference material is supplied, answer from your general knowledge of Indian law and say so.
- Use clear, plain language a non-lawyer can follow.
- You are not a substitute for a licensed advocate. Recommend consulting one for anything actionable.
- Never claim you cannot perform online searches or that you are limited to training data. The research has already been done for you; your job is to explain it.`

const victimInstruction = `The user is, or represents, the aggrieved party. Frame your answer around the remedies, protections and procedures available to the victim: how to file complaints, applicable protective provisions, compensation and the prosecution's side of the case.`

const accusedInstruction = `The user is, or represents, the accused. Frame your answer around the rights of the accused: bail, anticipatory bail, available defences, procedural safeguards and the burden of proof on the prosecution.`

const analysisPromptFormat = `Reference material:
%s

Using the reference material above, answer the question below. Cite the relevant sections and acts.

Question: %s`

const plainPromptFormat = `Question: %s`

const selfCheckReminder = `Reminder: the reference material in the conversation was already retrieved for you. Do not refuse on the grounds of being unable to search online or being limited to training data. Answer the question using the material provided.`

const refusalFallback = "I apologize, I could not produce a grounded answer to that question right now. Please try rephrasing it, or consult a licensed advocate for specific guidance."

const apologeticFailure = "I apologize, something went wrong while researching your question. Please try again in a moment."

const rephrasePrompt = "I could not find relevant legal material for that question. Could you rephrase it, perhaps naming the act or section involved?"

// refusalPhrases are the canned disclaimers the model sometimes emits even
// though retrieval already happened. A response containing one is sent back
// for a single corrective retry.
var refusalPhrases = []string{
	"i am unable to perform online searches",
	"based on the data i've been trained on",
}

func systemMessage(role domain.AdvocacyRole) domain.Message {
	content := systemPrompt
	switch role {
	case domain.AdvocacyVictim:
		content += "\n\n" + victimInstruction
	case domain.AdvocacyAccused:
		content += "\n\n" + accusedInstruction
	}
	return domain.Message{Role: domain.RoleSystem, Content: content}
}

func analysisPrompt(referenceMaterial, question string) string {
	if strings.TrimSpace(referenceMaterial) == "" {
		return fmt.Sprintf(plainPromptFormat, question)
	}
	return fmt.Sprintf(analysisPromptFormat, referenceMaterial, question)
}

func isRefusal(response string) bool {
	lower := strings.ToLower(response)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
