package agent

// Kind tags the variant carried by a Result.
type Kind string

const (
	KindNoteCreated           Kind = "NOTE_CREATED"
	KindNotesFound            Kind = "NOTES_FOUND"
	KindNoteSummarized        Kind = "NOTE_SUMMARIZED"
	KindFlashcardsGenerated   Kind = "FLASHCARDS_GENERATED"
	KindStudyGoalCreated      Kind = "STUDY_GOAL_CREATED"
	KindStudyPlanCreated      Kind = "STUDY_PLAN_CREATED"
	KindStudyRoadmapGenerated Kind = "STUDY_ROADMAP_GENERATED"
	KindStudySessionPrepared  Kind = "STUDY_SESSION_PREPARED"
)

// Result is a closed tagged union: exactly one payload pointer is non-nil,
// matching Kind. Construct through the New*Result functions. Rendering a
// Result to markdown or JSON is the caller's business; the core only builds
// structured values.
type Result struct {
	Kind Kind

	NoteCreated           *NoteCreated
	NotesFound            *NotesFound
	NoteSummarized        *NoteSummarized
	FlashcardsGenerated   *FlashcardsGenerated
	StudyGoalCreated      *StudyGoalCreated
	StudyPlanCreated      *StudyPlanCreated
	StudyRoadmapGenerated *StudyRoadmapGenerated
	StudySessionPrepared  *StudySessionPrepared
}

type NoteCreated struct {
	Path    string
	Title   string
	Preview string
}

// NoteMatch is one ranked hit of a notes search.
type NoteMatch struct {
	Path    string
	Title   string
	Score   float64
	Snippet string
}

type NotesFound struct {
	Query   string
	Matches []NoteMatch // ordered, best first
}

type NoteSummarized struct {
	Title       string
	Summary     string
	SourceFiles []string
}

type Flashcard struct {
	Question string
	Answer   string
}

type FlashcardsGenerated struct {
	Cards    []Flashcard
	NotePath string
	Count    int
}

type StudyGoalCreated struct {
	GoalID      string
	Topic       string
	Description string
}

type StudyPlanCreated struct {
	GoalID string
	Steps  []string
}

type StudyRoadmapGenerated struct {
	Topic   string
	Roadmap string
}

type StudySessionPrepared struct {
	SessionID string
	GoalID    string
	Materials []string
}

func NewNoteCreatedResult(p *NoteCreated) *Result {
	return &Result{Kind: KindNoteCreated, NoteCreated: p}
}

func NewNotesFoundResult(p *NotesFound) *Result {
	return &Result{Kind: KindNotesFound, NotesFound: p}
}

func NewNoteSummarizedResult(p *NoteSummarized) *Result {
	return &Result{Kind: KindNoteSummarized, NoteSummarized: p}
}

func NewFlashcardsResult(p *FlashcardsGenerated) *Result {
	return &Result{Kind: KindFlashcardsGenerated, FlashcardsGenerated: p}
}

func NewStudyGoalResult(p *StudyGoalCreated) *Result {
	return &Result{Kind: KindStudyGoalCreated, StudyGoalCreated: p}
}

func NewStudyPlanResult(p *StudyPlanCreated) *Result {
	return &Result{Kind: KindStudyPlanCreated, StudyPlanCreated: p}
}

func NewStudyRoadmapResult(p *StudyRoadmapGenerated) *Result {
	return &Result{Kind: KindStudyRoadmapGenerated, StudyRoadmapGenerated: p}
}

func NewStudySessionResult(p *StudySessionPrepared) *Result {
	return &Result{Kind: KindStudySessionPrepared, StudySessionPrepared: p}
}
