package enrich

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/mugline/roster-cli/internal/csvio"
	"github.com/mugline/roster-cli/internal/model"
)

// Manifest describes resumable progress for one enrichment run. A single
// structured file carries everything resume needs; progress is never
// inferred from scanning output filenames.
type Manifest struct {
	RunID     string    `yaml:"run_id"`
	InputPath string    `yaml:"input_path"`
	Rows      int       `yaml:"rows"`
	Total     int       `yaml:"total"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// Checkpointer persists the manifest plus the cumulative enriched rows
// alongside the eventual output file.
type Checkpointer struct {
	manifestPath string
	dataPath     string
}

// NewCheckpointer derives checkpoint paths from the output path.
func NewCheckpointer(outPath string) *Checkpointer {
	return &Checkpointer{
		manifestPath: outPath + ".checkpoint.yaml",
		dataPath:     outPath + ".checkpoint.csv",
	}
}

// Save writes the cumulative rows first, then the manifest. A crash
// between the two leaves a stale manifest at worst, never a manifest
// pointing at missing rows.
func (c *Checkpointer) Save(m Manifest, rows []model.EnrichedRecord) error {
	if err := csvio.WriteEnriched(c.dataPath, rows); err != nil {
		return eris.Wrap(err, "checkpoint: write rows")
	}

	m.Rows = len(rows)
	m.UpdatedAt = time.Now().UTC()
	out, err := yaml.Marshal(&m)
	if err != nil {
		return eris.Wrap(err, "checkpoint: marshal manifest")
	}
	if err := os.WriteFile(c.manifestPath, out, 0o644); err != nil {
		return eris.Wrap(err, "checkpoint: write manifest")
	}
	return nil
}

// Load returns the manifest and saved rows, or (nil, nil, nil) when no
// checkpoint exists. A manifest whose row count disagrees with the saved
// data is treated as corrupt.
func (c *Checkpointer) Load() (*Manifest, []model.EnrichedRecord, error) {
	raw, err := os.ReadFile(c.manifestPath)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "checkpoint: read manifest")
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, nil, eris.Wrap(err, "checkpoint: parse manifest")
	}

	rows, err := csvio.ReadEnriched(c.dataPath)
	if err != nil {
		return nil, nil, eris.Wrap(err, "checkpoint: read rows")
	}
	if len(rows) != m.Rows {
		return nil, nil, eris.Errorf("checkpoint: manifest claims %d rows, data has %d", m.Rows, len(rows))
	}
	return &m, rows, nil
}

// Clear removes the checkpoint after a successful run.
func (c *Checkpointer) Clear() error {
	for _, p := range []string{c.manifestPath, c.dataPath} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return eris.Wrapf(err, "checkpoint: remove %s", p)
		}
	}
	return nil
}
