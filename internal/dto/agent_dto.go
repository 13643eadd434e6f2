package dto

// AgentResultDTO is the wire form of an agent outcome. Kind discriminates
// which payload field is set.
type AgentResultDTO struct {
	Kind string `json:"kind"`

	NoteCreated         *NoteCreatedDTO         `json:"note_created,omitempty"`
	NotesFound          *NotesFoundDTO          `json:"notes_found,omitempty"`
	NoteSummarized      *NoteSummarizedDTO      `json:"note_summarized,omitempty"`
	FlashcardsGenerated *FlashcardsGeneratedDTO `json:"flashcards_generated,omitempty"`
	StudyGoalCreated    *StudyGoalCreatedDTO    `json:"study_goal_created,omitempty"`
	StudyPlanCreated    *StudyPlanCreatedDTO    `json:"study_plan_created,omitempty"`
	StudyRoadmap        *StudyRoadmapDTO        `json:"study_roadmap,omitempty"`
	StudySession        *StudySessionDTO        `json:"study_session,omitempty"`
}

type NoteCreatedDTO struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Preview string `json:"preview,omitempty"`
}

type NoteMatchDTO struct {
	Path    string  `json:"path"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet,omitempty"`
}

type NotesFoundDTO struct {
	Query   string         `json:"query"`
	Matches []NoteMatchDTO `json:"matches"`
}

type NoteSummarizedDTO struct {
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	SourceFiles []string `json:"source_files,omitempty"`
}

type FlashcardDTO struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type FlashcardsGeneratedDTO struct {
	Cards    []FlashcardDTO `json:"cards"`
	NotePath string         `json:"note_path,omitempty"`
	Count    int            `json:"count"`
}

type StudyGoalCreatedDTO struct {
	GoalId      string `json:"goal_id"`
	Topic       string `json:"topic"`
	Description string `json:"description,omitempty"`
}

type StudyPlanCreatedDTO struct {
	GoalId string   `json:"goal_id"`
	Steps  []string `json:"steps"`
}

type StudyRoadmapDTO struct {
	Topic   string `json:"topic"`
	Roadmap string `json:"roadmap"`
}

type StudySessionDTO struct {
	SessionId string   `json:"session_id"`
	GoalId    string   `json:"goal_id"`
	Materials []string `json:"materials,omitempty"`
}
