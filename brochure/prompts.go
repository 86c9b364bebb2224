package brochure

import (
	"fmt"
	"strings"
)

// linkSelectionSystemPrompt instructs the selection model to pick
// brochure-worthy links and answer with a JSON object.
const linkSelectionSystemPrompt = `You are provided with a list of links found on a webpage.

You are able to decide which of the links would be most relevant to include in a brochure about the company,
such as links to an About page, or a Company page, or Careers/Jobs pages.

You should respond in JSON as in this example:

{
    "links": [
        {"type": "about page", "url": "https://full.url/goes/here/about"},
        {"type": "careers page", "url": "https://another.full.url/careers"}
    ]
}`

// baseBrochureSystemPrompt is the tone-independent part of the generation
// system prompt. A tone addition is appended per request.
const baseBrochureSystemPrompt = `You are an assistant that analyzes the contents of several relevant pages from a company website
and creates a short brochure about the company for prospective customers, investors and recruits.

Respond in markdown without code blocks.

Include details of company culture, customers and careers/jobs if you have the information.`

// linkSelectionUserPrompt builds the user message for link selection: the
// base URL followed by every raw link, one per line. Links may be relative;
// the model is asked to answer with absolute https URLs.
func linkSelectionUserPrompt(baseURL string, links []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `Here is the list of links on the website %s -
Please decide which of these are relevant web links for a brochure about the company.
Respond with the full https URL in JSON format.
Do not include Terms of Service, Privacy, email links.

Links (some might be relative links):

`, baseURL)
	sb.WriteString(strings.Join(links, "\n"))
	return sb.String()
}

// brochureSystemPrompt combines the base system prompt with a tone addition.
func brochureSystemPrompt(tone Tone) string {
	return baseBrochureSystemPrompt + "\n\n" + tone.promptAddition
}

// brochureUserPrompt builds the user message for brochure generation from
// the company name, optional custom instructions, and the aggregated page
// content.
func brochureUserPrompt(companyName, content, customInstructions string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `You are looking at a company called: %s

Here are the contents of its landing page and other relevant pages;
use this information to build a short brochure of the company in markdown without code blocks.

`, companyName)

	if customInstructions != "" {
		fmt.Fprintf(&sb, "Additional instructions: %s\n\n", customInstructions)
	}

	sb.WriteString(content)
	return sb.String()
}
