package analyze

import (
	"fmt"
	"strings"
)

// Worked-example URLs embedded in the prompts. Candidates echoing these back
// are rejected by the extractor so a repeated example never becomes a stored
// suggestion.
const (
	exampleArticleURL = "https://example.com/ai-ethics-healthcare"
	examplePostURL    = "https://reddit.com/r/programming/example"
)

const newsHeader = "You are a precise news analyst trained to extract structured information. " +
	"I need you to analyze, understand the news articles contextually and extract specific fields in a consistent JSON format."

const newsExample = `EXAMPLE INPUT:
1. AI Ethics Group Warns of Risks in Healthcare Applications
A leading AI ethics organization released a report highlighting concerns about rapid deployment of AI systems in healthcare without proper validation or oversight.
url: ` + exampleArticleURL + `

EXAMPLE OUTPUT:
[
  {
    "topic": "AI ethics in healthcare",
    "keywords": ["AI validation", "medical oversight", "patient safety", "regulatory gaps"],
    "description": "Ethics experts warn that deploying unvalidated AI systems in healthcare settings poses significant risks to patient outcomes and data privacy.",
    "label": "technology",
    "url": "` + exampleArticleURL + `"
  }
]

NOW ANALYZE THESE ARTICLES:`

const newsTask = `

For each article above, create a JSON object with these fields:
1. "topic": A precise 3-5 word headline capturing the core subject
2. "keywords": An array of EXACTLY 4 specific, relevant terms (avoid generic words like 'technology' or 'health')
3. "description": One clear, information-dense sentence summarizing the key insight and indicating why the user should write about this topic (aim for 15-20 words)
4. "label": EXACTLY one of ["general", "technology", "health", "sports", "politics", "science", "business", "entertainment"] - choose the MOST specific match, use "general" if no other category fits
5. "url": The source URL
`

const postHeader = "You are a community insights analyst specializing in online discourse analysis. " +
	"Your expertise lies in identifying collective sentiment patterns, recognizing consensus vs. disagreement, " +
	"and extracting key perspectives from online communities. " +
	"Discussions often contain diverse viewpoints, emotional undertones, and specialized terminology. " +
	"Analyze these posts with nuance, capturing both explicit statements and implicit community values, and " +
	"extract structured information that preserves the authentic voice of the community while " +
	"organizing it into consistent, comparable data fields."

const postExample = `EXAMPLE INPUT:
1. Will AI replace programmers in the next 5 years?
As someone working in ML for 8 years, no chance. AI tools are great assistants but terrible at understanding real-world constraints and debugging complex systems.
My company is already using GitHub Copilot and it's saved me hours of boilerplate coding. I think junior dev roles will definitely change.
url: ` + examplePostURL + `

EXAMPLE OUTPUT:
[
  {
    "topic": "AI impact on programming",
    "keywords": ["job security", "coding assistants", "skill evolution", "junior developers"],
    "description": "The community has mixed opinions on AI's impact on programming careers, with experienced developers emphasizing AI's limitations while acknowledging its usefulness for routine tasks.",
    "label": "technology",
    "url": "` + examplePostURL + `"
  }
]

NOW ANALYZE THESE POSTS:`

const postTask = `

For each post above, create a JSON object with these fields:
1. "topic": A precise 3-5 word phrase capturing the community's focus
2. "keywords": An array of EXACTLY 4 terms reflecting community perspectives (be specific, avoid generic terms)
3. "description": One sentence capturing the primary community sentiment, opinion, or concern and indicating why the user should write about this topic
4. "label": EXACTLY one of ["general", "technology", "health", "sports", "politics", "science", "business", "entertainment"] - choose the MOST specific match, use "general" if no other category fits
5. "url": The source URL or null if unavailable
`

const formatRequirements = `
FORMAT REQUIREMENTS:
- Return a valid, parseable JSON array of objects
- Use double quotes for ALL keys and string values
- Follow these EXACT escaping rules:
  - For quotes within strings: use \" (backslash followed by quote)
  - For backslashes: use \\ (double backslash)
  - For newlines: use \n
- ALWAYS add commas between array elements: [item1, item2]
- ALWAYS add commas between object properties: {"prop1": value, "prop2": value}
- NEVER add trailing commas (e.g., {"prop1": value,} is invalid)
- Include NO explanatory text outside the JSON array
- Check that all brackets and braces are properly balanced
- Test your output: every string value with quotes or backslashes must have proper escaping
`

// NewsPrompt compiles the extraction prompt for a batch of article snippets.
// Deterministic: role header, one worked example, numbered items, then the
// output-format contract.
func NewsPrompt(snippets []string, urls []string) string {
	var items []string
	for i, s := range snippets {
		url := ""
		if i < len(urls) {
			url = urls[i]
		}
		items = append(items, fmt.Sprintf("%d. %s\nurl: %s", i+1, s, url))
	}
	body := strings.Join(items, "\n\n")
	return newsHeader + "\n\n" + newsExample + "\n\n" + body + newsTask + formatRequirements
}

// PostPrompt compiles the extraction prompt for a batch of post snippets.
// A nil url renders as "url: null" per the contract.
func PostPrompt(snippets []string, urls []*string) string {
	var items []string
	for i, s := range snippets {
		urlLine := "url: null"
		if i < len(urls) && urls[i] != nil && *urls[i] != "" {
			urlLine = "url: " + *urls[i]
		}
		items = append(items, fmt.Sprintf("%d. %s\n%s", i+1, s, urlLine))
	}
	body := strings.Join(items, "\n\n")
	return postHeader + "\n\n" + postExample + "\n\n" + body + postTask + formatRequirements
}
