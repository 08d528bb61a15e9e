package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"refdata-manager/core/reconcile"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ProcessedDir is the subdirectory imported workbooks are moved into.
const ProcessedDir = "processed"

// WatchConfig configures a directory watcher.
type WatchConfig struct {
	Dir string
	// ResourceType forces every file to one resource type. When empty it is
	// taken from the file name: "docType.xlsx" and "docType-march.xlsx" both
	// import as docType.
	ResourceType string
	Mode         reconcile.Mode
	DryRun       bool
	// Debounce is how long a file must stay quiet before it is imported.
	Debounce time.Duration
}

// Watcher imports workbooks dropped into a directory.
type Watcher struct {
	service *Service
	cfg     WatchConfig
	logger  *zap.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher for cfg.Dir.
func NewWatcher(service *Service, cfg WatchConfig) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if cfg.Mode == "" {
		cfg.Mode = reconcile.ModeUpsert
	}
	return &Watcher{
		service: service,
		cfg:     cfg,
		logger:  service.logger.With(zap.String("dir", cfg.Dir)),
		pending: make(map[string]*time.Timer),
	}
}

// ResourceTypeFromFile derives a resource type from a workbook file name.
func ResourceTypeFromFile(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if i := strings.IndexAny(base, "-_. "); i > 0 {
		base = base[:i]
	}
	return base
}

func isWorkbook(name string) bool {
	base := filepath.Base(name)
	// Office lock files
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".xlsx")
}

// Run imports the workbooks already present, then watches for new ones until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Join(w.cfg.Dir, ProcessedDir), 0o755); err != nil {
		return fmt.Errorf("failed to create processed directory: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.cfg.Dir, err)
	}

	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", w.cfg.Dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() && isWorkbook(e.Name()) {
			w.schedule(ctx, filepath.Join(w.cfg.Dir, e.Name()))
		}
	}

	w.logger.Info("Watching for workbooks", zap.String("mode", string(w.cfg.Mode)), zap.Bool("dry_run", w.cfg.DryRun))
	for {
		select {
		case <-ctx.Done():
			w.stop()
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				w.stop()
				return nil
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				if isWorkbook(ev.Name) {
					w.schedule(ctx, ev.Name)
				}
			}
		case err, ok := <-fw.Errors:
			if !ok {
				w.stop()
				return nil
			}
			w.logger.Warn("Watcher error", zap.Error(err))
		}
	}
}

// schedule (re)arms the debounce timer of a file.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		if t.Stop() {
			w.wg.Done()
		}
	}
	w.wg.Add(1)
	w.pending[path] = time.AfterFunc(w.cfg.Debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if _, err := w.ImportFile(ctx, path); err != nil {
			w.logger.Error("Workbook import failed", zap.String("file", path), zap.Error(err))
		}
	})
}

func (w *Watcher) stop() {
	w.mu.Lock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

// ImportFile imports one workbook, writes its result next to it as JSON and
// moves both into the processed directory.
func (w *Watcher) ImportFile(ctx context.Context, path string) (*reconcile.ImportResult, error) {
	resourceType := w.cfg.ResourceType
	if resourceType == "" {
		resourceType = ResourceTypeFromFile(path)
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	result, err := w.service.Import(ctx, buf, resourceType, w.cfg.Mode, w.cfg.DryRun)
	if err != nil {
		return nil, err
	}

	processed := filepath.Join(w.cfg.Dir, ProcessedDir, filepath.Base(path))
	report, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := os.WriteFile(strings.TrimSuffix(processed, filepath.Ext(processed))+".result.json", report, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write result: %w", err)
	}
	if err := os.Rename(path, processed); err != nil {
		return nil, fmt.Errorf("failed to move %s: %w", path, err)
	}

	w.logger.Info("Workbook imported",
		zap.String("file", filepath.Base(path)),
		zap.String("resource", resourceType),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
