package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ChangedMsg reports a change in the registry directory.
type ChangedMsg struct {
	Event fsnotify.Event
}

// WatchErrMsg reports a watcher failure.  No further ChangedMsgs
// follow it.
type WatchErrMsg struct {
	Err error
}

// Watcher turns filesystem events in a registry directory into
// messages.
type Watcher struct {
	w *fsnotify.Watcher
}

func NewWatcher(dir string) (w *Watcher, err error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}
	err = fw.Add(dir)
	if err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "watch %s", dir)
	}
	return &Watcher{w: fw}, nil
}

// Next returns a command that waits for the next event.  It must be
// issued again after each ChangedMsg.
func (w *Watcher) Next() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			log.Debugf("watch: %v", ev)
			return ChangedMsg{Event: ev}
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			return WatchErrMsg{Err: err}
		}
	}
}

func (w *Watcher) Close() error {
	return w.w.Close()
}
