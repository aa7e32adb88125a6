package platform

import (
	"log/slog"
	"sync"
)

// DryRunBackend logs window-state requests and key events instead of
// performing them. Enumeration passes through to the wrapped backend, and the
// last activated window is reported as foreground so a rehearsal follows the
// same path a successful run would.
type DryRunBackend struct {
	inner  Backend
	logger *slog.Logger

	mu        sync.Mutex
	activated WindowHandle
}

var _ Backend = (*DryRunBackend)(nil)

// DryRun wraps inner. A nil logger discards output.
func DryRun(inner Backend, logger *slog.Logger) *DryRunBackend {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DryRunBackend{inner: inner, logger: logger.With("dry_run", true)}
}

func (d *DryRunBackend) Name() string                 { return d.inner.Name() + "+dry-run" }
func (d *DryRunBackend) SourceName(src Source) string { return d.inner.SourceName(src) }
func (d *DryRunBackend) Close() error                 { return d.inner.Close() }
func (d *DryRunBackend) Sources() []Source            { return d.inner.Sources() }

func (d *DryRunBackend) ListWindows(src Source) ([]Window, error) {
	return d.inner.ListWindows(src)
}

func (d *DryRunBackend) ForegroundWindow() (WindowHandle, error) {
	d.mu.Lock()
	activated := d.activated
	d.mu.Unlock()
	if activated != 0 {
		return activated, nil
	}
	return d.inner.ForegroundWindow()
}

func (d *DryRunBackend) Restore(h WindowHandle) error {
	d.logger.Info("restore", "window", h)
	return nil
}

func (d *DryRunBackend) Maximize(h WindowHandle) error {
	d.logger.Info("maximize", "window", h)
	return nil
}

func (d *DryRunBackend) Activate(h WindowHandle) error {
	d.logger.Info("activate", "window", h)
	d.mu.Lock()
	d.activated = h
	d.mu.Unlock()
	return nil
}

func (d *DryRunBackend) KeyDown(k Key) error {
	d.logger.Info("key down", "key", string(k))
	return nil
}

func (d *DryRunBackend) KeyUp(k Key) error {
	d.logger.Info("key up", "key", string(k))
	return nil
}
