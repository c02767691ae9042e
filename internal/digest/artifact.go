package digest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/hermes-sec/hermes-cli/internal/model"
)

// Briefing artifacts keep the naming of earlier pipeline versions.
const (
	artifactFilePrefix = "hermes_llm_top3_"
	artifactFileSuffix = ".json"
)

// WriteArtifact persists the briefing as a dated JSON artifact in dir and
// returns its path. The artifact is written before delivery is attempted so
// a mail failure never loses the generated briefing.
func WriteArtifact(b *model.Briefing, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "digest: create artifact dir %s", dir)
	}

	raw, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "digest: encode briefing")
	}

	path := filepath.Join(dir, artifactFilePrefix+b.Date+artifactFileSuffix)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", eris.Wrapf(err, "digest: write artifact %s", path)
	}
	return path, nil
}

// LatestArtifactDate returns the most recent briefing date present in dir,
// or an empty string when no artifacts exist.
func LatestArtifactDate(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrapf(err, "digest: read artifact dir %s", dir)
	}

	latest := ""
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, artifactFilePrefix) || !strings.HasSuffix(name, artifactFileSuffix) {
			continue
		}
		date := strings.TrimSuffix(strings.TrimPrefix(name, artifactFilePrefix), artifactFileSuffix)
		if date > latest {
			latest = date
		}
	}
	return latest, nil
}

// ReadArtifact loads a previously written briefing artifact for date.
func ReadArtifact(dir, date string) (*model.Briefing, error) {
	path := filepath.Join(dir, artifactFilePrefix+date+artifactFileSuffix)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "digest: read artifact %s", path)
	}

	var b model.Briefing
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, eris.Wrapf(err, "digest: decode artifact %s", path)
	}
	return &b, nil
}
