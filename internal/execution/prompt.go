package execution

import (
	"fmt"
	"strings"
)

// systemPrompt instructs the model to emit nothing but the prefixed
// final answer. The scoring service does an exact match, so any extra
// prose costs the point.
const systemPrompt = `You are a concise assistant. Your ONLY task is to provide the exact answer to the question.
IMPORTANT RULES:
0. If you are given data on a date or between two dates you have to be very precise
1. Your response MUST start with "FINAL ANSWER: "
2. After "FINAL ANSWER: " you MUST ONLY provide:
   - A single number (no words, no units, no commas)
   - OR a single word/phrase (no articles, no explanations)
   - OR a comma-separated list of numbers/words (no additional text)
3. DO NOT add any explanations, thoughts, or additional text
4. DO NOT use articles or abbreviations
5. DO NOT use units unless specifically requested

Example correct responses:
FINAL ANSWER: 42
FINAL ANSWER: Barcelona
FINAL ANSWER: 1,2,3,4,5`

// buildPrompt composes the per-question user message: the question,
// any attached file, and a reminder of the answer format.
func buildPrompt(req *AnswerRequest) string {
	var prompt strings.Builder

	prompt.WriteString("Please answer the following question:\n\n")
	prompt.WriteString(req.Question)

	switch {
	case req.FileContent != "":
		fmt.Fprintf(&prompt, "\n\nThe question has an attached file %q with the following content:\n\n%s", req.FileName, req.FileContent)
	case req.FilePath != "":
		fmt.Fprintf(&prompt, "\n\nAttached file: %s\nRead this file if it is needed to answer the question.", req.FilePath)
	}

	prompt.WriteString("\n\nRemember to provide your final answer in the format: FINAL ANSWER: <your answer>")
	return prompt.String()
}
