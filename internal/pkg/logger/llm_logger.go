package logger

import (
	"log"
	"os"
	"path/filepath"
)

// NewLLMLogger opens the dedicated model-traffic log. Prompts and replies are
// noisy and may contain note content, so they stay out of the application
// log. Falls back to stdout when the file cannot be opened.
func NewLLMLogger(logPath string) *log.Logger {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create LLM log directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
