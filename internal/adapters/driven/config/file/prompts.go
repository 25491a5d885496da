package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
	"github.com/custodia-labs/houseplan-cli/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

const promptExt = ".tmpl"

// DefaultPrompts are the built-in templates. They are copied into the
// prompt directory on first use and stand in for any file that is missing
// or broken.
func DefaultPrompts() map[string]string {
	return map[string]string{
		driven.PromptProposal: `You are a designer at a house-building company.
Request: family of {{.Request.FamilySize}}, {{.Request.RoomCount}} rooms, {{.Area}} sqm, budget {{.Budget}} (ten-thousand yen)
Preferences: {{.Request.Preferences}}
Reference drawings:
{{range .References}}{{.}}
{{end}}
Propose the three best floor plans for this household.`,

		driven.PromptChatSystem: `Answer taking the previous plan proposal and the customer's additional requests into account.

Previous proposal:
{{.Proposal}}`,
	}
}

const promptReadme = "# houseplan prompts\n\n" +
	"Edit these files to change how proposals and follow-up answers are written.\n" +
	"Edits apply from the next request on.\n\n" +
	"- `proposal.tmpl` drafts the proposal for a customer request. Fields:\n" +
	"  `{{.Request.FamilySize}}`, `{{.Request.RoomCount}}`, `{{.Area}}`, `{{.Budget}}`,\n" +
	"  `{{.Request.Preferences}}` and `{{.References}}` (reference plan filenames).\n" +
	"- `chat_system.tmpl` is the system instruction for follow-up chat. Field:\n" +
	"  `{{.Proposal}}`.\n\n" +
	"Files are Go text/template. A file that does not parse is ignored in favour\n" +
	"of the built-in text. Delete a file to get the built-in text back.\n"

// PromptStore reads templates from a directory of .tmpl files and caches
// them until Reload. The directory is only touched on the first Load.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore uses ~/.houseplan/prompts when dir is empty.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".houseplan", "prompts")
	}
	return &PromptStore{dir: dir, cache: map[string]string{}}, nil
}

func (s *PromptStore) Dir() string { return s.dir }

// Path is the file that holds the named template.
func (s *PromptStore) Path(name string) string {
	return filepath.Join(s.dir, name+promptExt)
}

// Load returns the named template. Built-in names always resolve, even
// when the directory is unusable. Other names must exist on disk.
func (s *PromptStore) Load(name string) (string, error) {
	builtin, known := DefaultPrompts()[name]

	s.seedOnce.Do(s.seed)
	if s.seedErr != nil {
		if known {
			return builtin, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.seedErr)
	}

	s.mu.RLock()
	cached, hit := s.cache[name]
	s.mu.RUnlock()
	if hit {
		return cached, nil
	}

	text, err := s.read(name)
	if err != nil {
		if !known {
			return "", fmt.Errorf("load prompt %q: %w", name, err)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("prompt %q: %v, using built-in default", name, err)
		}
		text = builtin
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A concurrent Load may have filled the entry first; keep one answer.
	if prev, ok := s.cache[name]; ok {
		return prev, nil
	}
	s.cache[name] = text
	return text, nil
}

// Reload drops cached templates so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = map[string]string{}
	s.mu.Unlock()
}

// read returns the trimmed file content if it is a valid template.
func (s *PromptStore) read(name string) (string, error) {
	raw, err := os.ReadFile(s.Path(name))
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", errors.New("file is empty")
	}
	if _, err := template.New(name).Parse(text); err != nil {
		return "", err
	}
	return text, nil
}

// seed creates the directory and writes any default file that is not
// there yet. Existing files are never overwritten.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	files := map[string]string{filepath.Join(s.dir, "README.md"): promptReadme}
	for name, text := range DefaultPrompts() {
		files[s.Path(name)] = text
	}
	for path, text := range files {
		if err := writeIfAbsent(path, text); err != nil {
			s.seedErr = fmt.Errorf("create %s: %w", filepath.Base(path), err)
			return
		}
	}
}

func writeIfAbsent(path, text string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
