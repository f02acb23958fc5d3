// =============================================================================
// enrich.go - AI-Enriched Formatting Strategy
// =============================================================================
//
// AIEnrichedFormatter replaces the fixed article blocks with model-written
// section summaries. It keeps all the plain formatter's contracts: the same
// placeholder for empty input, the same category cap applied before the model
// ever sees the records, and the plain rendering of the exact same records as
// the fallback when the API call fails.
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// AIEnrichedFormatter wraps the plain renderer with a chat-completions
// summarization pass.
type AIEnrichedFormatter struct {
	plain  NoopFormatter
	client *openAIClient
	log    *logrus.Logger
}

func NewAIEnrichedFormatter(cfg EnrichConfig, log *logrus.Logger) *AIEnrichedFormatter {
	return &AIEnrichedFormatter{
		client: newOpenAIClient(cfg),
		log:    log,
	}
}

// Format summarizes the capped records with the model. Empty input renders
// the category placeholder without any API call; an API error, a cancelled
// context included, degrades to the plain rendering of the same records
// rather than injecting error text into the page.
func (f *AIEnrichedFormatter) Format(ctx context.Context, records []Record, cat Category) string {
	spec, ok := specFor(cat)
	if !ok {
		return ""
	}
	if len(records) == 0 {
		return spec.Placeholder
	}
	records = capRecords(records, spec.MaxItems)

	summary, err := f.client.ChatCompletion(ctx, systemPromptFor(cat), recordsPrompt(records, cat))
	if err != nil {
		f.log.Warnf("ai summary %s: %v, falling back to plain rendering", cat, err)
		return f.plain.Format(ctx, records, cat)
	}
	if summary == "" {
		f.log.Warnf("ai summary %s: empty reply, falling back to plain rendering", cat)
		return f.plain.Format(ctx, records, cat)
	}
	return summary
}

// recordsPrompt serializes the records into the plain-text digest the model
// summarizes. Abstracts are clipped so a long section stays inside the token
// budget.
func recordsPrompt(records []Record, cat Category) string {
	var b strings.Builder
	for i, rec := range records {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if cat == CategoryNews {
			fmt.Fprintf(&b, "Headline: %s\nSource: %s\nPublished: %s", rec.Title, rec.Source, rec.Published)
		} else {
			fmt.Fprintf(&b, "Title: %s\nAuthors: %s\nAbstract: %s", rec.Title, rec.Authors, truncateString(rec.Abstract, 400))
		}
	}
	return b.String()
}

func systemPromptFor(cat Category) string {
	if cat == CategoryNews {
		return newsSystemPrompt
	}
	return paperSystemPrompt
}

const promptPreamble = `You are an expert quantum computing researcher and science communicator. Your task is to create concise, insightful summaries that highlight the most important information.`

const paperSystemPrompt = promptPreamble + `

For research papers, focus on:
- Key findings and novel contributions
- Methodology innovations or improvements
- Practical implications for quantum computing
- Potential impact on the field

Format as HTML with:
- Use <h4> for paper titles
- Use <p> for 2-3 sentence summaries
- Use <ul><li> for key points when appropriate
- Include author names in italics
- Avoid boilerplate phrases like "This paper explores"

Keep each summary to 3-4 sentences maximum.`

const newsSystemPrompt = promptPreamble + `

For news items, focus on:
- Major announcements or breakthroughs
- Market impacts and business developments
- Policy or regulatory changes
- Significant partnerships or investments

Format as HTML with:
- Use <h4> for headlines
- Use <p> for 1-2 sentence summaries
- Group related stories when possible
- Highlight the source in <em> tags
- Focus on actionable insights

Keep each summary to 2-3 sentences maximum.`
