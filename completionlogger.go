package studify

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// CompletionLogger records every completion-service interaction of one run
// (a server session or a CLI invocation) to its own file under log/.
type CompletionLogger struct {
	file *os.File
	mu   sync.Mutex
	id   string
}

// NewCompletionLogger creates the log file for the given run id.
func NewCompletionLogger(id string) (*CompletionLogger, error) {
	if err := os.MkdirAll("log", 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join("log", fmt.Sprintf("%s.log", id))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &CompletionLogger{file: file, id: id}

	logger.Logf("=== Completion Log ===\n")
	logger.Logf("Run ID: %s\n", id)
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("======================\n\n")

	return logger, nil
}

// Logf writes a formatted entry with a timestamp.
func (cl *CompletionLogger) Logf(format string, args ...interface{}) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	timestamp := time.Now().Format("15:04:05.000")
	message := fmt.Sprintf(format, args...)

	fmt.Fprintf(cl.file, "[%s] %s", timestamp, message)
	cl.file.Sync()
}

// LogRequest logs an outgoing prompt.
func (cl *CompletionLogger) LogRequest(op, prompt string) {
	cl.Logf("=== REQUEST (%s) ===\n", op)
	cl.Logf("Prompt:\n%s\n", prompt)
	cl.Logf("====================\n\n")
}

// LogResponse logs a service response payload.
func (cl *CompletionLogger) LogResponse(op, response string) {
	cl.Logf("=== RESPONSE (%s) ===\n", op)
	cl.Logf("Response:\n%s\n", response)
	cl.Logf("=====================\n\n")
}

// Close writes the trailer and closes the file.
func (cl *CompletionLogger) Close() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.file != nil {
		fmt.Fprintf(cl.file, "[%s] === Completion Log Closed ===\n", time.Now().Format("15:04:05.000"))
		return cl.file.Close()
	}
	return nil
}
