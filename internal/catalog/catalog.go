package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/loopforge/api/internal/model"
)

// Catalog resolves stem and source-video references to absolute file paths.
// The index is loaded once from a JSON file and is read-only afterwards, so
// concurrent jobs need no locking beyond the lazy load.
type Catalog struct {
	stemsDir  string
	videosDir string
	indexFile string

	once  sync.Once
	index *index
	err   error
}

type index struct {
	Stems  []model.Stem  `json:"stems"`
	Videos []SourceVideo `json:"videos"`
}

// SourceVideo is a catalog entry for a looping source clip.
type SourceVideo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	File string `json:"file"`
}

func New(stemsDir, videosDir, indexFile string) *Catalog {
	return &Catalog{
		stemsDir:  stemsDir,
		videosDir: videosDir,
		indexFile: indexFile,
	}
}

func (c *Catalog) load() (*index, error) {
	c.once.Do(func() {
		data, err := os.ReadFile(c.indexFile)
		if err != nil {
			c.err = fmt.Errorf("failed to read catalog index: %w", err)
			return
		}
		var idx index
		if err := json.Unmarshal(data, &idx); err != nil {
			c.err = fmt.Errorf("failed to parse catalog index: %w", err)
			return
		}
		c.index = &idx
	})
	return c.index, c.err
}

// Stems returns all catalog stems.
func (c *Catalog) Stems() ([]model.Stem, error) {
	idx, err := c.load()
	if err != nil {
		return nil, err
	}
	return idx.Stems, nil
}

// Videos returns all catalog source videos.
func (c *Catalog) Videos() ([]SourceVideo, error) {
	idx, err := c.load()
	if err != nil {
		return nil, err
	}
	return idx.Videos, nil
}

// ResolveStem looks up a stem by id and verifies its source file exists.
// The returned stem carries the absolute path in File.
func (c *Catalog) ResolveStem(stemID string) (*model.Stem, error) {
	idx, err := c.load()
	if err != nil {
		return nil, err
	}
	for _, s := range idx.Stems {
		if s.ID != stemID {
			continue
		}
		abs, err := c.absPath(c.stemsDir, s.File)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, model.NewNotFoundError("stem %s source file missing: %s", stemID, s.File)
		}
		resolved := s
		resolved.File = abs
		return &resolved, nil
	}
	return nil, model.NewNotFoundError("stem %s not in catalog", stemID)
}

// ResolveVideo looks up a source video by id and verifies the file exists.
func (c *Catalog) ResolveVideo(videoID string) (*SourceVideo, error) {
	idx, err := c.load()
	if err != nil {
		return nil, err
	}
	for _, v := range idx.Videos {
		if v.ID != videoID {
			continue
		}
		abs, err := c.absPath(c.videosDir, v.File)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, model.NewNotFoundError("video %s source file missing: %s", videoID, v.File)
		}
		resolved := v
		resolved.File = abs
		return &resolved, nil
	}
	return nil, model.NewNotFoundError("video %s not in catalog", videoID)
}

func (c *Catalog) absPath(dir, file string) (string, error) {
	if filepath.IsAbs(file) {
		return file, nil
	}
	return filepath.Abs(filepath.Join(dir, file))
}
