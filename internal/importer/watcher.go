package importer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/eduvance/portal/internal/database"
)

// DefaultDebounce is how long the watcher waits for the tree to settle
const DefaultDebounce = 5 * time.Second

// Watcher reseeds subjects when folders appear under the data-import tree
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange func(ctx context.Context)
	watcher  *fsnotify.Watcher

	mu      sync.Mutex
	timer   *time.Timer
	running bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher over dir that calls onChange after changes settle
func NewWatcher(dir string, debounce time.Duration, onChange func(ctx context.Context)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		dir:      dir,
		debounce: debounce,
		onChange: onChange,
		watcher:  fsWatcher,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start watches the root and its syllabus folders.
// Syllabus folders created later are picked up from the root watch.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}
	for _, syllabusType := range database.SyllabusTypes {
		w.addWatch(filepath.Join(w.dir, syllabusType))
	}

	w.running = true
	w.wg.Add(1)
	go w.eventLoop()

	log.Info().Str("dir", w.dir).Str("debounce", w.debounce.String()).Msg("Import watcher started")
	return nil
}

// Stop stops the watcher and drops a pending reseed
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	w.cancel()
	w.watcher.Close()
	w.wg.Wait()

	log.Info().Msg("Import watcher stopped")
}

func (w *Watcher) addWatch(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.watcher.Add(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to watch directory")
		return
	}
	log.Debug().Str("path", path).Msg("Watching directory")
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Import watcher error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() {
		return
	}

	// A new syllabus folder needs its own watch to see subject folders
	if filepath.Dir(event.Name) == filepath.Clean(w.dir) {
		w.addWatch(event.Name)
	}

	w.schedule()
}

// schedule starts or resets the debounce timer
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Reset(w.debounce)
		return
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
	log.Debug().Str("debounce", w.debounce.String()).Msg("Scheduled subject reseed")
}

func (w *Watcher) fire() {
	w.mu.Lock()
	w.timer = nil
	running := w.running
	w.mu.Unlock()

	if !running || w.ctx.Err() != nil {
		return
	}
	w.onChange(w.ctx)
}
