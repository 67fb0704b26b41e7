package ai

import (
	"fmt"
	"strings"

	"github.com/example/psychly/pkg/models"
)

func excludeList(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func contentPrompt(t models.ContentType, exclude []string) string {
	if t == models.Theory {
		return fmt.Sprintf(`Generate a random well-known psychology theory. Do NOT use any of these theories: %s.

Respond ONLY with valid JSON in this exact format (no markdown, no code blocks, just raw JSON):
{
    "name": "Name of the theory",
    "info": "A brief 2-3 sentence description of what the theory states",
    "yearCreated": "Year or decade the theory was introduced",
    "theorists": "Names of the primary theorists"
}`, excludeList(exclude))
	}

	return fmt.Sprintf(`Generate a random famous psychology experiment or study. Do NOT use any of these experiments: %s.

Respond ONLY with valid JSON in this exact format (no markdown, no code blocks, just raw JSON):
{
    "name": "Name of the experiment",
    "info": "A brief 2-3 sentence description of what the experiment was about and what happened",
    "date": "Year or date range when it was conducted",
    "researchers": "Names of the primary researchers",
    "hypothesis": "The hypothesis the researchers set out to test, in one sentence",
    "rejected": true or false depending on whether the results rejected the hypothesis
}`, excludeList(exclude))
}

func categoryPrompt(t models.ContentType, name, info string, categories []string) string {
	return fmt.Sprintf(`Classify the psychology %s "%s" into exactly one of these categories: %s.

Description: %s

Respond with only the category name in lowercase, nothing else.`,
		t, name, strings.Join(categories, ", "), info)
}

func guessPrompt(t models.ContentType, guess, actual string) string {
	return fmt.Sprintf(`A player is trying to name today's psychology %s. The correct answer is "%s".
The player guessed: "%s".

Accept the guess if it clearly refers to the same %s, even with different wording,
a common nickname, or minor spelling mistakes. Reject vague or unrelated guesses.

Respond ONLY with raw JSON in this format:
{"correct": true or false, "reasoning": "One short sentence explaining the decision"}`,
		t, actual, guess, t)
}

func hypothesisPrompt(name, info string) string {
	return fmt.Sprintf(`For the psychology experiment "%s" (%s), state the hypothesis the researchers tested
and whether the results rejected it.

Respond ONLY with raw JSON in this format:
{"hypothesis": "One sentence hypothesis", "rejected": true or false}`, name, info)
}
