package dto

// Tool endpoints expose each assistant capability directly, bypassing the
// intent classifier. Every request names the vault it operates on.

type CreateNoteToolRequest struct {
	VaultId string `json:"vault_id" validate:"required"`
	Title   string `json:"title" validate:"required,max=120"`
	Content string `json:"content,omitempty"`
}

type SearchToolRequest struct {
	VaultId string `json:"vault_id" validate:"required"`
	Query   string `json:"query" validate:"required,min=1"`
}

type SummarizeToolRequest struct {
	VaultId  string `json:"vault_id" validate:"required"`
	NotePath string `json:"note_path,omitempty"`
	Topic    string `json:"topic,omitempty" validate:"required_without=NotePath"`
}

type FlashcardToolRequest struct {
	VaultId  string `json:"vault_id" validate:"required"`
	NotePath string `json:"note_path,omitempty"`
	Topic    string `json:"topic,omitempty" validate:"required_without=NotePath"`
}

type StudyGoalToolRequest struct {
	VaultId string `json:"vault_id" validate:"required"`
	Topic   string `json:"topic" validate:"required"`
}

type StudyPlanToolRequest struct {
	VaultId string `json:"vault_id" validate:"required"`
	GoalId  string `json:"goal_id" validate:"required,uuid"`
}

type StudyRoadmapToolRequest struct {
	VaultId string `json:"vault_id" validate:"required"`
	Topic   string `json:"topic" validate:"required"`
}

type StudySessionToolRequest struct {
	VaultId string `json:"vault_id" validate:"required"`
	GoalId  string `json:"goal_id" validate:"required,uuid"`
}

type DeleteNoteToolRequest struct {
	VaultId string `json:"vault_id" validate:"required"`
	Path    string `json:"path" validate:"required"`
}
