package transform

import (
	"context"
	"errors"
	"strings"
)

type personaData struct {
	Business string
	Guide    string
	Content  string
}

// BuildPersona asks the model for a conversational-agent prompt for business,
// following the structure of guide and grounded on the aggregate report content.
func (s *Service) BuildPersona(ctx context.Context, aggregate, guide, business string) (string, error) {
	if strings.TrimSpace(aggregate) == "" {
		return "", errors.New("no content to build a persona from")
	}
	if strings.TrimSpace(guide) == "" {
		return "", errors.New("persona guide is empty")
	}
	if business == "" {
		business = "the business"
	}

	prompt, err := render(s.persona, personaData{
		Business: business,
		Guide:    guide,
		Content:  s.truncate(aggregate, "aggregate report"),
	})
	if err != nil {
		return "", err
	}
	return s.generate(ctx, prompt)
}

const personaPrompt = `You are an expert in designing conversational AI agents.
Using the website content below, write the complete system prompt for a virtual assistant that represents {{.Business}}.

Follow the structure, sections and tone of this guide template exactly, filling every section with facts taken from the website content. Do not invent products, prices, schedules or contact details that are not in the content.

Guide template:
---
{{.Guide}}
---

Website content:
---
{{.Content}}
---

Return only the finished agent prompt in Markdown.
`
