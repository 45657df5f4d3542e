package llm

import (
	"context"
	"sync"
)

// ScriptedCompleter returns canned responses in order for offline mode and
// tests. After the script runs out it repeats the last entry; with no script
// it returns a minimal valid markdown document.
type ScriptedCompleter struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
}

func NewScriptedCompleter(responses ...string) *ScriptedCompleter {
	return &ScriptedCompleter{responses: responses}
}

// NewFailingCompleter returns a completer whose every call fails with err.
func NewFailingCompleter(err error) *ScriptedCompleter {
	return &ScriptedCompleter{err: err}
}

func (s *ScriptedCompleter) Name() string { return "Scripted" }
func (s *ScriptedCompleter) Close() error { return nil }

// Calls reports how many completions were requested.
func (s *ScriptedCompleter) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *ScriptedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "# Document\n\nGenerated offline.\n", nil
	}
	i := s.calls - 1
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}
