package service

import "fmt"

// ChatError is the one user-facing failure of the chat flow: the final
// completion could not be produced. It names the provider and model so the
// client can render an actionable message.
type ChatError struct {
	Provider string
	Model    string
	Err      error
}

func (e *ChatError) Error() string {
	return fmt.Sprintf("chat completion failed (provider=%s model=%s): %v", e.Provider, e.Model, e.Err)
}

func (e *ChatError) Unwrap() error {
	return e.Err
}

// ErrConversationNotFound is returned when a request names a conversation id
// that does not exist.
var ErrConversationNotFound = fmt.Errorf("conversation not found")

// ErrNoteNotFound is returned when a request names a vault path that holds
// no note.
var ErrNoteNotFound = fmt.Errorf("note not found")
