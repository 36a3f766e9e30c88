package agent

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	dhcpddata "isc.org/dhcpdleases/daemondata/dhcpd"
)

// The most recent state of the lease file.
type LeaseSnapshot struct {
	// Leases from the last successfully parsed file contents.
	Leases dhcpddata.Leases
	// Time of the last successful parse. Zero until the file is parsed.
	ParsedAt time.Time
	// Number of failed attempts to read or parse the file.
	ParseErrors uint64
	// Error of the last attempt or nil if it succeeded.
	LastError error
}

// Provides the lease file snapshots.
type LeaseSource interface {
	GetSnapshot() LeaseSnapshot
}

var _ LeaseSource = (*LeaseFileWatcher)(nil)

// Watches the lease file using the fsnotify library and parses it each
// time it changes. The DHCP server appends the lease declarations to the
// file and periodically rewrites it from scratch, renaming the new file
// over the old one. Therefore, the directory is watched rather than the
// file, and the file is parsed again when it is written or created. The
// last good snapshot is kept when the file disappears or cannot be parsed.
type LeaseFileWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	mutex    sync.RWMutex
	snapshot LeaseSnapshot
	running  bool
	stop     chan bool
	wg       sync.WaitGroup
	now      func() time.Time
}

// Returns the absolute path of the lease file with the symbolic links
// evaluated. The file may not exist yet, in which case its directory is
// resolved.
func resolveLeaseFilePath(path string) (string, error) {
	realPath, err := filepath.EvalSymlinks(path)
	if errors.Is(err, os.ErrNotExist) {
		var dir string
		dir, err = filepath.EvalSymlinks(filepath.Dir(path))
		realPath = filepath.Join(dir, filepath.Base(path))
	}
	if err != nil {
		return "", errors.Wrapf(err, "cannot resolve the lease file path %s", path)
	}
	realPath, err = filepath.Abs(realPath)
	return realPath, errors.Wrapf(err, "cannot resolve the lease file path %s", path)
}

// Creates the watcher of the lease file. The file does not need to exist
// but its directory must.
func NewLeaseFileWatcher(path string) (*LeaseFileWatcher, error) {
	realPath, err := resolveLeaseFilePath(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "cannot create the file watcher")
	}
	if err = watcher.Add(filepath.Dir(realPath)); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "cannot watch the lease file directory %s", filepath.Dir(realPath))
	}
	log.WithField("file", realPath).Info("Watching lease file")
	return &LeaseFileWatcher{
		path:    realPath,
		watcher: watcher,
		stop:    make(chan bool),
		now:     time.Now,
	}, nil
}

// Returns the watched lease file path.
func (w *LeaseFileWatcher) Path() string {
	return w.path
}

// Returns the most recent snapshot.
func (w *LeaseFileWatcher) GetSnapshot() LeaseSnapshot {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.snapshot
}

// Parses the lease file and replaces the snapshot on success.
func (w *LeaseFileWatcher) Reload() error {
	result, err := dhcpddata.ParseFile(w.path)

	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.snapshot.LastError = err
	if err != nil {
		w.snapshot.ParseErrors++
		log.WithError(err).WithField("file", w.path).Warn("Failed to load lease file; keeping previous leases")
		return err
	}
	w.snapshot.Leases = result.Leases
	w.snapshot.ParsedAt = w.now()
	log.WithFields(log.Fields{
		"file":   w.path,
		"leases": len(result.Leases),
	}).Debug("Reloaded lease file")
	return nil
}

// Parses the lease file and starts the background goroutine parsing it
// again on every change.
func (w *LeaseFileWatcher) Start() {
	if w.running {
		return
	}
	_ = w.Reload()
	w.wg.Add(1)
	go w.watchLoop()
	w.running = true
}

// Dispatches the file system events.
func (w *LeaseFileWatcher) watchLoop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stop:
			return
		case err, ok := <-w.watcher.Errors:
			if !ok {
				log.Error("Watcher error: channel closed")
				return
			}
			log.WithError(err).Error("Received error from watcher")
		case event, ok := <-w.watcher.Events:
			if !ok {
				log.Warn("Failed to read from watcher events channel")
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			log.WithField("event", event).Debug("FsNotify event received")
			switch {
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				log.WithField("file", w.path).Debug("Lease file was moved away; waiting for it to reappear")
			case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
				_ = w.Reload()
			}
		}
	}
}

// Stops the background goroutine. The watcher cannot be reused.
func (w *LeaseFileWatcher) Stop() {
	if w.running {
		close(w.stop)
		w.wg.Wait()
		w.running = false
	}
	w.watcher.Close()
}
