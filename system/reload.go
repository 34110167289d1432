package system

import (
	"path/filepath"
	"strings"

	"github.com/milk9111/parkkeeper/fsm"
	"github.com/milk9111/parkkeeper/keeper"
	"github.com/milk9111/parkkeeper/menu"
	"github.com/milk9111/parkkeeper/prefabs"
)

// Reloader rebuilds machines when their definition or script files change.
type Reloader struct {
	Watcher *prefabs.Watcher
	Options []fsm.Option
}

// Apply drains pending file events and swaps in rebuilt machines. A file
// that fails to load is logged and the running machine is kept.
func (r *Reloader) Apply(w *World) {
	if r == nil || r.Watcher == nil {
		return
	}
	var reloadKeeper, reloadMenu bool
	for _, path := range r.Watcher.Drain() {
		base := filepath.Base(path)
		switch {
		case base == prefabs.KeeperMachineFile, strings.HasSuffix(base, ".tengo"):
			reloadKeeper = true
		case base == prefabs.MenuMachineFile:
			reloadMenu = true
		}
	}
	if reloadKeeper {
		m, err := keeper.Load(r.Options...)
		if err != nil {
			w.logger.Error("reload keeper machine", "err", err)
		} else {
			w.SetKeeper(m)
			w.logger.Info("reloaded keeper machine", "state", m.ActiveName())
		}
	}
	if reloadMenu {
		m, err := menu.Load(r.Options...)
		if err != nil {
			w.logger.Error("reload menu machine", "err", err)
		} else {
			w.SetMenu(m, nil)
			w.logger.Info("reloaded menu machine", "state", m.ActiveName())
		}
	}
	select {
	case err, ok := <-r.Watcher.Errors:
		if ok && err != nil {
			w.logger.Warn("prefab watcher", "err", err)
		}
	default:
	}
}
