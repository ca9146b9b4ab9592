package resource

import (
	"context"
	"os"
	"path/filepath"
	"slices"

	"github.com/fsnotify/fsnotify"
	"github.com/mark3labs/stepwise/internal/logger"
	"github.com/mark3labs/stepwise/internal/page"
)

// Watch invalidates cached content whenever a descriptor in dir changes. It
// blocks until ctx is done. Pages already bound to a running wizard keep
// their content; the next resolution picks up the edit.
func Watch(ctx context.Context, dir string, cache Cache) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	log := logger.Named("watch")
	log.Info("watching %s", dir)

	// IDs declared per file name, so a rename or removal still invalidates
	// the ID the file used to declare.
	known := declaredIDs(dir)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			ext := filepath.Ext(event.Name)
			if ext != ".yaml" && ext != ".yml" {
				continue
			}
			for _, id := range changedIDs(event, known) {
				if err := cache.Invalidate(ctx, id); err != nil {
					log.Warn("invalidating %s: %v", id, err)
					continue
				}
				log.Debug("invalidated %s (%s)", id, event.Op)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error: %v", err)
		}
	}
}

// declaredIDs maps each parseable descriptor file in dir to the ID it
// declares. Unreadable or invalid files are skipped.
func declaredIDs(dir string) map[string]page.ID {
	known := make(map[string]page.ID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return known
	}
	for _, entry := range entries {
		name := entry.Name()
		ext := filepath.Ext(name)
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		d, err := ParseDescriptor(name, data)
		if err != nil {
			continue
		}
		known[name] = d.ID
	}
	return known
}

func changedIDs(event fsnotify.Event, known map[string]page.ID) []page.ID {
	name := filepath.Base(event.Name)
	ids := []page.ID{IDFromFile(name)}
	if old, ok := known[name]; ok && old != ids[0] {
		ids = append(ids, old)
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		delete(known, name)
		return ids
	}

	data, err := os.ReadFile(event.Name)
	if err != nil {
		return ids
	}
	d, err := ParseDescriptor(name, data)
	if err != nil {
		return ids
	}
	known[name] = d.ID
	if !slices.Contains(ids, d.ID) {
		ids = append(ids, d.ID)
	}
	return ids
}
