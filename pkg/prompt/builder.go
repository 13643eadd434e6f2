package prompt

import (
	"fmt"
	"strings"

	"vault-copilot-be/pkg/retrieval"
	"vault-copilot-be/pkg/vectorstore"
)

// Builder assembles the fallback chat prompt: retrieval context (notes
// and/or web) plus the user question.
type Builder struct {
	rctx  *retrieval.Context
	query string
}

func NewBuilder(rctx *retrieval.Context, query string) *Builder {
	return &Builder{
		rctx:  rctx,
		query: query,
	}
}

func (b *Builder) Build() string {
	var p strings.Builder

	b.writeNotesContext(&p)
	b.writeWebContext(&p)
	b.writeTask(&p)
	b.writeUserQuery(&p)

	return p.String()
}

func (b *Builder) writeNotesContext(p *strings.Builder) {
	if b.rctx == nil || len(b.rctx.Chunks) == 0 {
		return
	}

	p.WriteString("<notes_context>\n")
	for _, c := range b.rctx.Chunks {
		if path := c.FilePath(); path != "" {
			fmt.Fprintf(p, "[%s]\n", path)
		}
		p.WriteString(chunkText(c))
		p.WriteString("\n\n")
	}
	p.WriteString("</notes_context>\n\n")
}

func (b *Builder) writeWebContext(p *strings.Builder) {
	if b.rctx == nil || len(b.rctx.Web) == 0 {
		return
	}

	p.WriteString("<web_context>\n")
	for _, s := range b.rctx.Web {
		fmt.Fprintf(p, "%s (%s)\n%s\n\n", s.Title, s.URL, s.Text)
	}
	p.WriteString("</web_context>\n\n")
}

func (b *Builder) writeTask(p *strings.Builder) {
	p.WriteString("<task>\n")
	p.WriteString("You are an assistant for the user's personal notes.\n")
	if b.rctx != nil && !b.rctx.IsEmpty() {
		p.WriteString("Answer using the context above. When the notes context is the source, mention which note it came from. ")
		p.WriteString("If the context does not contain the answer, say so honestly.\n")
	} else {
		p.WriteString("Answer from general knowledge; no notes or web context was retrieved for this question.\n")
	}
	p.WriteString("</task>\n\n")
}

func (b *Builder) writeUserQuery(p *strings.Builder) {
	p.WriteString("<user_question>\n")
	p.WriteString(b.query)
	p.WriteString("\n</user_question>")
}

func chunkText(c vectorstore.ScoredChunk) string {
	return strings.TrimSpace(c.Text)
}
