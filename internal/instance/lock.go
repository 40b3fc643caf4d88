// pattern: Imperative Shell
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
)

const lockFileName = "binclean.lock"

// ErrBusy is returned when another cleanup run is already in flight.
var ErrBusy = errors.New("another cleanup is already running")

// Guard serializes cleanup runs. Only one holder at a time; a second
// TryAcquire fails immediately rather than waiting.
//
// The in-process flag covers concurrent callers inside one process. When
// a data directory is given, an exclusive file lock there also keeps two
// binclean processes from cleaning at the same time.
type Guard struct {
	busy    atomic.Bool
	dataDir string

	mu sync.Mutex
	fl *flock.Flock
}

// NewGuard returns an in-process guard.
func NewGuard() *Guard {
	return &Guard{}
}

// NewFileGuard returns a guard that also holds a lock file in dataDir.
func NewFileGuard(dataDir string) *Guard {
	return &Guard{dataDir: dataDir}
}

// TryAcquire claims the guard. It returns ErrBusy when the guard is
// held, or a wrapped error when the lock file cannot be created.
func (g *Guard) TryAcquire() error {
	if !g.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	if g.dataDir == "" {
		return nil
	}

	fl, err := Lock(g.dataDir)
	if err != nil {
		g.busy.Store(false)
		return err
	}
	g.mu.Lock()
	g.fl = fl
	g.mu.Unlock()
	return nil
}

// Release gives the guard up. Releasing an unheld guard is a no-op.
func (g *Guard) Release() {
	g.mu.Lock()
	fl := g.fl
	g.fl = nil
	g.mu.Unlock()

	if fl != nil {
		_ = fl.Unlock()
	}
	g.busy.Store(false)
}

// Busy reports whether the guard is currently held in this process.
func (g *Guard) Busy() bool {
	return g.busy.Load()
}

// Lock takes the exclusive run lock in dataDir without blocking.
// It returns ErrBusy if another process holds it.
func Lock(dataDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	fl := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrBusy
	}
	return fl, nil
}

// Unlock removes a lock file left behind by a crashed run. It fails with
// ErrBusy if a live process still holds the lock.
func Unlock(dataDir string) error {
	fl, err := Lock(dataDir)
	if err != nil {
		return err
	}
	_ = fl.Unlock()
	if err := os.Remove(fl.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}
