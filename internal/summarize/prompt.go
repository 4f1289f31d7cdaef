package summarize

import (
	"fmt"
	"regexp"
	"strings"
)

const promptTemplate = `<content>%s</content>

Please transform this content into an in-depth technical narrative that combines technical depth with the personality and insights from the original conversation. Write for a knowledgeable audience that wants both rich technical detail and the human story behind the innovations.

When describing technical innovations, combine thorough technical explanation with the speaker's perspective on why these choices matter. Maintain the original voice and personality while diving deep into the most compelling technical aspects. Begin directly with the content.

Please think through this summary task step by step in your internal reasoning, then provide the final summary in a structured format.

Your response must be wrapped in summary tags like this:
<summary>
[Your technical summary here with these characteristics:]
Deliver:
- Detailed explanations of novel technical approaches and why they matter
- The speaker's insights and reasoning behind technical choices
- Specific examples and implementation details
- Real-world context and practical implications

Structure requirements:
- At most half an hour of reading time
- Clear Markdown formatting
- Flowing narrative with minimal bullet points
- Natural blend of technical depth and personal insights

Writing style:
- Detailed technical explanations that reveal underlying complexity
- Preserve interesting quotes and personal observations
- Explain what makes techniques "novel" or interesting
- Let the speaker's excitement and expertise shine through
- Balance technical depth with clear, engaging exposition
- Connected ideas rather than isolated points
</summary>`

var summaryTagPattern = regexp.MustCompile(`(?s)<summary>(.*?)</summary>`)

func buildPrompt(content string) string {
	return fmt.Sprintf(promptTemplate, content)
}

// extractSummary pulls the text between the summary tags the prompt
// asks for. Responses without tags are kept rather than discarded; the
// marker prefix makes the degraded extraction visible in the artifact.
func extractSummary(response string) string {
	match := summaryTagPattern.FindStringSubmatch(response)
	if match != nil {
		return strings.TrimSpace(match[1])
	}
	return "[Failed to extract summary tags]\n\n" + response
}
