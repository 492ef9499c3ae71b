package llm

import "fmt"

const relevanceSnippetRunes = 1500

// relevancePromptTemplate asks for a bare YES/NO so the gatekeeper stays
// cheap and easy to parse
const relevancePromptTemplate = `Is the following TEXT directly related to the CRAWLING GOAL?
Answer with only a single word: "YES" or "NO".

CRAWLING GOAL: "%s"
TEXT: "%s"
`

const enrichmentSystemInstruction = `You are an expert text analyst. Respond with only a single valid JSON object and nothing else.`

const enrichmentPromptTemplate = `Analyze the following text, keeping the main goal in mind: "%s".
TEXT: "%s"
TASKS: 1. Summarize the text in 3 concise sentences in the text's own language. 2. Extract 7-10 relevant keywords. 3. Score the relevance of the TEXT to the CRAWLING GOAL from 0.0 to 1.0. 4. Identify the text's language as an ISO 639-1 code.
Provide the output in a single JSON object with four keys: "summary", "keywords", "relevance_score", and "language".
Example: {"summary": "...", "keywords": ["...", "..."], "relevance_score": 0.95, "language": "ko"}
`

func relevancePrompt(instruction, snippet string) string {
	return fmt.Sprintf(relevancePromptTemplate, instruction, snippet)
}

func enrichmentPrompt(instruction, text string) string {
	return fmt.Sprintf(enrichmentPromptTemplate, instruction, text)
}
