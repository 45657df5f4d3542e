package prompt

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"
)

//go:embed templates/*.prompty
var builtins embed.FS

var reFrontmatter = regexp.MustCompile(`(?s)^---\n.*?\n---\n`)

// Loader loads and renders .prompty templates. It is an explicit
// collaborator passed to constructors, never a process-wide singleton.
type Loader struct {
	fsys fs.FS
	dir  string
}

// NewLoader serves the templates compiled into the binary.
func NewLoader() *Loader {
	sub, err := fs.Sub(builtins, "templates")
	if err != nil {
		// embed layout is fixed at build time
		panic(err)
	}
	return &Loader{fsys: sub}
}

// NewLoaderFromDir serves templates from an on-disk directory, overriding
// the embedded set.
func NewLoaderFromDir(dir string) *Loader {
	return &Loader{fsys: os.DirFS(dir), dir: dir}
}

// Load returns the template body with YAML frontmatter stripped.
func (l *Loader) Load(name string) (string, error) {
	if !strings.HasSuffix(name, ".prompty") {
		name += ".prompty"
	}
	raw, err := fs.ReadFile(l.fsys, path.Clean(name))
	if err != nil {
		return "", fmt.Errorf("prompt: template %q not found: %w", name, err)
	}
	body := reFrontmatter.ReplaceAllString(string(raw), "")
	return strings.TrimSpace(body), nil
}

// Render loads a template and substitutes {{ key }} placeholders. Keys not
// present in vars are left verbatim; values are inserted literally.
func (l *Loader) Render(name string, vars map[string]string) (string, error) {
	tpl, err := l.Load(name)
	if err != nil {
		return "", err
	}
	for key, value := range vars {
		re, err := regexp.Compile(`\{\{\s*` + regexp.QuoteMeta(key) + `\s*\}\}`)
		if err != nil {
			return "", fmt.Errorf("prompt: bad variable name %q: %w", key, err)
		}
		v := value
		tpl = re.ReplaceAllStringFunc(tpl, func(string) string { return v })
	}
	return tpl, nil
}
