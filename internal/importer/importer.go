package importer

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/qualgraph/qualgraph/internal/engine"
	"github.com/qualgraph/qualgraph/pkg/types"
)

// ImportResult summarises a completed directory import.
type ImportResult struct {
	FilesFound       int           `json:"files_found"`
	FilesImported    int           `json:"files_imported"`
	FilesSkipped     int           `json:"files_skipped"`
	FilesFailed      int           `json:"files_failed"`
	EntitiesCreated  int           `json:"entities_created"`
	RelationsCreated int           `json:"relations_created"`
	Errors           []string      `json:"errors,omitempty"`
	Duration         time.Duration `json:"duration_ms"`
}

// Importer loads memo and transcript Markdown notes into the graph.
type Importer struct {
	engine *engine.Engine
}

// NewImporter creates an Importer that writes through the given engine.
func NewImporter(eng *engine.Engine) *Importer {
	return &Importer{engine: eng}
}

// ImportDirectory walks dirPath, parses every Markdown note found, and creates
// entities with their observations. [[wiki-links]] become related_to relations
// when the target entity exists after the import pass; links to names the
// graph does not know are counted as skipped, not errors. When projectName is
// non-empty, every imported entity additionally gets a part_of relation to it.
func (imp *Importer) ImportDirectory(ctx context.Context, dirPath, projectName string) (*ImportResult, error) {
	start := time.Now()

	info, err := os.Stat(dirPath)
	if err != nil {
		return nil, fmt.Errorf("cannot access directory %q: %w", dirPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", dirPath)
	}

	files, err := collectMarkdownFiles(dirPath)
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", dirPath, err)
	}

	result := &ImportResult{FilesFound: len(files)}

	// Phase 1: parse every note before touching the graph, so one batch of
	// entities lands together and wiki-links can resolve across the set.
	var notes []*ParsedNote
	for _, absPath := range files {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		rel, _ := filepath.Rel(dirPath, absPath)

		data, err := os.ReadFile(absPath)
		if err != nil {
			log.Printf("import: skip %s: %v", rel, err)
			result.FilesFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rel, err))
			continue
		}
		if len(strings.TrimSpace(string(data))) == 0 {
			result.FilesSkipped++
			continue
		}

		note, err := ParseNote(data, rel)
		if err != nil {
			log.Printf("import: skip %s: %v", rel, err)
			result.FilesFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rel, err))
			continue
		}
		notes = append(notes, note)
	}

	if len(notes) == 0 {
		result.Duration = time.Since(start)
		return result, nil
	}

	// Phase 2: create the entities. Observations go in with the entity so a
	// re-import of the same directory is a no-op.
	entities := make([]types.Entity, 0, len(notes)+1)
	if projectName != "" {
		// Seed the project so part_of relations always have a target.
		// CreateEntities skips it when it already exists.
		entities = append(entities, types.Entity{
			Name:         projectName,
			EntityType:   types.EntityTypeProject,
			Observations: []string{},
		})
	}
	for _, note := range notes {
		obs := note.Observations
		if len(note.Tags) > 0 {
			obs = append(obs, fmt.Sprintf("Tags: %s", strings.Join(note.Tags, ", ")))
		}
		entities = append(entities, types.Entity{
			Name:         note.Name,
			EntityType:   note.EntityType,
			Observations: obs,
		})
	}
	created, err := imp.engine.CreateEntities(ctx, entities)
	if err != nil {
		return nil, fmt.Errorf("create entities: %w", err)
	}
	result.FilesImported = len(notes)
	result.EntitiesCreated = len(created)

	// Phase 3: wiki-links and project membership. Targets are resolved
	// against the full graph so notes may link to pre-existing entities.
	graph, err := imp.engine.ReadGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}
	known := make(map[string]string, len(graph.Entities))
	for _, e := range graph.Entities {
		known[strings.ToLower(e.Name)] = e.Name
	}

	var relations []types.Relation
	for _, note := range notes {
		for _, wl := range note.WikiLinks {
			target, ok := known[strings.ToLower(wl.Target)]
			if !ok {
				log.Printf("import: %s links to unknown entity %q", note.RelativePath, wl.Target)
				continue
			}
			if target == note.Name {
				continue
			}
			relations = append(relations, types.Relation{
				From:         note.Name,
				To:           target,
				RelationType: types.RelRelatedTo,
			})
		}
		if projectName != "" && projectName != note.Name {
			relations = append(relations, types.Relation{
				From:         note.Name,
				To:           projectName,
				RelationType: types.RelPartOf,
			})
		}
	}

	if len(relations) > 0 {
		createdRels, err := imp.engine.CreateRelations(ctx, relations)
		if err != nil {
			return nil, fmt.Errorf("create relations: %w", err)
		}
		result.RelationsCreated = len(createdRels)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// collectMarkdownFiles walks dirPath and returns all .md / .markdown files,
// skipping hidden directories.
func collectMarkdownFiles(dirPath string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dirPath {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext == ".md" || ext == ".markdown" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
