package mapper

import (
	"fmt"
	"strings"

	"vault-copilot-be/internal/dto"
	"vault-copilot-be/pkg/agent"
)

// ResultMapper turns structured agent results into wire DTOs and a
// markdown reply the client can render directly.
type ResultMapper struct{}

func NewResultMapper() *ResultMapper {
	return &ResultMapper{}
}

func (m *ResultMapper) ToDTO(r *agent.Result) *dto.AgentResultDTO {
	if r == nil {
		return nil
	}

	out := &dto.AgentResultDTO{Kind: string(r.Kind)}

	switch r.Kind {
	case agent.KindNoteCreated:
		out.NoteCreated = &dto.NoteCreatedDTO{
			Path:    r.NoteCreated.Path,
			Title:   r.NoteCreated.Title,
			Preview: r.NoteCreated.Preview,
		}
	case agent.KindNotesFound:
		matches := make([]dto.NoteMatchDTO, 0, len(r.NotesFound.Matches))
		for _, match := range r.NotesFound.Matches {
			matches = append(matches, dto.NoteMatchDTO{
				Path:    match.Path,
				Title:   match.Title,
				Score:   match.Score,
				Snippet: match.Snippet,
			})
		}
		out.NotesFound = &dto.NotesFoundDTO{
			Query:   r.NotesFound.Query,
			Matches: matches,
		}
	case agent.KindNoteSummarized:
		out.NoteSummarized = &dto.NoteSummarizedDTO{
			Title:       r.NoteSummarized.Title,
			Summary:     r.NoteSummarized.Summary,
			SourceFiles: r.NoteSummarized.SourceFiles,
		}
	case agent.KindFlashcardsGenerated:
		cards := make([]dto.FlashcardDTO, 0, len(r.FlashcardsGenerated.Cards))
		for _, card := range r.FlashcardsGenerated.Cards {
			cards = append(cards, dto.FlashcardDTO{
				Question: card.Question,
				Answer:   card.Answer,
			})
		}
		out.FlashcardsGenerated = &dto.FlashcardsGeneratedDTO{
			Cards:    cards,
			NotePath: r.FlashcardsGenerated.NotePath,
			Count:    r.FlashcardsGenerated.Count,
		}
	case agent.KindStudyGoalCreated:
		out.StudyGoalCreated = &dto.StudyGoalCreatedDTO{
			GoalId:      r.StudyGoalCreated.GoalID,
			Topic:       r.StudyGoalCreated.Topic,
			Description: r.StudyGoalCreated.Description,
		}
	case agent.KindStudyPlanCreated:
		out.StudyPlanCreated = &dto.StudyPlanCreatedDTO{
			GoalId: r.StudyPlanCreated.GoalID,
			Steps:  r.StudyPlanCreated.Steps,
		}
	case agent.KindStudyRoadmapGenerated:
		out.StudyRoadmap = &dto.StudyRoadmapDTO{
			Topic:   r.StudyRoadmapGenerated.Topic,
			Roadmap: r.StudyRoadmapGenerated.Roadmap,
		}
	case agent.KindStudySessionPrepared:
		out.StudySession = &dto.StudySessionDTO{
			SessionId: r.StudySessionPrepared.SessionID,
			GoalId:    r.StudySessionPrepared.GoalID,
			Materials: r.StudySessionPrepared.Materials,
		}
	}

	return out
}

// RenderText writes a short markdown confirmation for each result kind. It
// is the assistant turn persisted to the conversation when an agent handles
// the message.
func (m *ResultMapper) RenderText(r *agent.Result) string {
	if r == nil {
		return ""
	}

	var b strings.Builder

	switch r.Kind {
	case agent.KindNoteCreated:
		fmt.Fprintf(&b, "Created note **%s** at `%s`.", r.NoteCreated.Title, r.NoteCreated.Path)
		if r.NoteCreated.Preview != "" {
			fmt.Fprintf(&b, "\n\n> %s", r.NoteCreated.Preview)
		}

	case agent.KindNotesFound:
		fmt.Fprintf(&b, "Found %d note(s) for \"%s\":\n", len(r.NotesFound.Matches), r.NotesFound.Query)
		for i, match := range r.NotesFound.Matches {
			fmt.Fprintf(&b, "\n%d. **%s** (`%s`)", i+1, match.Title, match.Path)
			if match.Snippet != "" {
				fmt.Fprintf(&b, "\n   > %s", match.Snippet)
			}
		}

	case agent.KindNoteSummarized:
		fmt.Fprintf(&b, "**Summary of %s**\n\n%s", r.NoteSummarized.Title, r.NoteSummarized.Summary)
		if len(r.NoteSummarized.SourceFiles) > 0 {
			b.WriteString("\n\nSources:")
			for _, f := range r.NoteSummarized.SourceFiles {
				fmt.Fprintf(&b, "\n- `%s`", f)
			}
		}

	case agent.KindFlashcardsGenerated:
		fmt.Fprintf(&b, "Generated %d flashcard(s)", r.FlashcardsGenerated.Count)
		if r.FlashcardsGenerated.NotePath != "" {
			fmt.Fprintf(&b, ", saved to `%s`", r.FlashcardsGenerated.NotePath)
		}
		b.WriteString(".\n")
		for _, card := range r.FlashcardsGenerated.Cards {
			fmt.Fprintf(&b, "\n**Q:** %s\n**A:** %s\n", card.Question, card.Answer)
		}

	case agent.KindStudyGoalCreated:
		fmt.Fprintf(&b, "Study goal created: **%s** (id `%s`).", r.StudyGoalCreated.Topic, r.StudyGoalCreated.GoalID)
		if r.StudyGoalCreated.Description != "" {
			fmt.Fprintf(&b, "\n\n%s", r.StudyGoalCreated.Description)
		}

	case agent.KindStudyPlanCreated:
		fmt.Fprintf(&b, "Study plan for goal `%s`:\n", r.StudyPlanCreated.GoalID)
		for i, step := range r.StudyPlanCreated.Steps {
			fmt.Fprintf(&b, "\n%d. %s", i+1, step)
		}

	case agent.KindStudyRoadmapGenerated:
		fmt.Fprintf(&b, "**Roadmap: %s**\n\n%s", r.StudyRoadmapGenerated.Topic, r.StudyRoadmapGenerated.Roadmap)

	case agent.KindStudySessionPrepared:
		fmt.Fprintf(&b, "Study session `%s` prepared for goal `%s`.", r.StudySessionPrepared.SessionID, r.StudySessionPrepared.GoalID)
		if len(r.StudySessionPrepared.Materials) > 0 {
			b.WriteString("\n\nMaterials:")
			for _, mat := range r.StudySessionPrepared.Materials {
				fmt.Fprintf(&b, "\n- %s", mat)
			}
		}
	}

	return b.String()
}
