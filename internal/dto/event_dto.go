package dto

// NoteSavedMessage is the payload published on the indexing topic whenever a
// note file changes on disk.
type NoteSavedMessage struct {
	VaultId string `json:"vault_id"`
	Path    string `json:"path"`
	Deleted bool   `json:"deleted,omitempty"`
}
