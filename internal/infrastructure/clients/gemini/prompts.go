package gemini

import "strings"

const conditionPromptTemplate = `You are a medical triage assistant for search suggestion only.
User symptom text may include typos and grammar errors.

Task:
1) Infer likely disease/condition names from the symptom description.
2) Return only likely conditions, not treatments.
3) Include both common and specific differential diagnoses.
4) Keep output concise.
5) Strongly prioritize anatomical context (head vs chest vs abdomen vs back).
6) Avoid unrelated generic pain conditions when a clear body region is present.

Return STRICT JSON:
{
  "normalized_query": "string",
  "conditions": ["condition 1", "condition 2", "... up to 15"]
}

User symptom text:
`

func buildConditionPrompt(query string) string {
	return strings.TrimSpace(conditionPromptTemplate + query)
}
