// Package tui is a terminal front end for a labware registry: a table
// of registered labware types and a form for adding new ones.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	li "github.com/t7a/labindex"
)

// Store is the part of a registry the UI needs.  *labindex.Registry
// satisfies it.
type Store interface {
	Put(name string, lw *li.Labware) error
	Get(name string) (*li.Labware, error)
	List() []string
	Remove(name string) error
}

// Run shows the browser for store until the user quits.  Changes made
// to dir by other processes are picked up as they happen.
func Run(store Store, dir string) (err error) {
	w, err := NewWatcher(dir)
	if err != nil {
		return
	}
	defer w.Close()

	p := tea.NewProgram(NewBrowser(store, w), tea.WithAltScreen())
	_, err = p.Run()
	return
}
