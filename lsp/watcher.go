package lsp

import (
	"os"
	"time"
)

// GrammarWatcher polls the workspace's grammar files and reloads the
// languages when one of them changes on disk.
type GrammarWatcher struct {
	workspace    *Workspace
	onReload     func(err error)
	stopCh       chan struct{}
	pollInterval time.Duration
	modTimes     map[string]time.Time
}

// NewGrammarWatcher creates a watcher. onReload is called after every
// reload with its result.
func NewGrammarWatcher(ws *Workspace, onReload func(err error)) *GrammarWatcher {
	return &GrammarWatcher{
		workspace:    ws,
		onReload:     onReload,
		stopCh:       make(chan struct{}),
		pollInterval: 1 * time.Second,
		modTimes:     make(map[string]time.Time),
	}
}

func (w *GrammarWatcher) Start() {
	w.scan()
	go w.run()
}

func (w *GrammarWatcher) Stop() {
	close(w.stopCh)
}

func (w *GrammarWatcher) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if w.scan() {
				w.reload()
			}
		}
	}
}

// scan records the modification times of the grammar files and reports
// whether any changed since the previous scan.
func (w *GrammarWatcher) scan() bool {
	changed := false
	current := make(map[string]bool)
	for _, path := range w.workspace.GrammarFiles() {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		current[path] = true
		lastMod, known := w.modTimes[path]
		if !known || info.ModTime().After(lastMod) {
			w.modTimes[path] = info.ModTime()
			changed = changed || known
		}
	}
	for path := range w.modTimes {
		if !current[path] {
			delete(w.modTimes, path)
			changed = true
		}
	}
	return changed
}

func (w *GrammarWatcher) reload() {
	err := w.workspace.Load()
	if err != nil {
		log.Errorf("reload languages: %s", err)
	} else {
		log.Infof("reloaded languages")
	}
	if w.onReload != nil {
		w.onReload(err)
	}
}
