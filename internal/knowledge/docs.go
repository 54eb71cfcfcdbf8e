// Package knowledge loads the two markdown documents injected verbatim into
// the analysis prompt: the workflow description and the known error patterns.
package knowledge

import (
	"log/slog"
	"os"
	"path/filepath"
)

const (
	workflowFile    = "workflow.md"
	knownErrorsFile = "known_errors.md"

	workflowPlaceholder    = "No workflow documentation available."
	knownErrorsPlaceholder = "No known error patterns available."
)

// Docs holds the document contents fed to the model.
type Docs struct {
	Workflow    string
	KnownErrors string
}

// Load reads both documents from dir. A missing or unreadable file is
// replaced by its placeholder with a logged warning; Load never fails.
func Load(dir string) Docs {
	return Docs{
		Workflow:    readOrPlaceholder(filepath.Join(dir, workflowFile), workflowPlaceholder),
		KnownErrors: readOrPlaceholder(filepath.Join(dir, knownErrorsFile), knownErrorsPlaceholder),
	}
}

func readOrPlaceholder(path, placeholder string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("knowledge document missing, using placeholder", "path", path, "error", err)
		return placeholder
	}
	return string(data)
}
