// Package view holds the client-side state of the item list: the cached
// items, the status tab, the expanded card and the submission form.
package view

import (
	"log/slog"

	"github.com/erazemk/lostfound/internal/model"
)

// State is the list view. The zero value is not ready for use; call New.
// The cached items are a local copy and may lag behind the server until the
// next Load.
type State struct {
	items       []model.Item
	filter      string
	expandedID  int64
	formVisible bool
	logger      *slog.Logger
}

// New returns the initial state: no items, the "lost" tab selected, no card
// expanded and the form hidden.
func New(logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{filter: model.StatusLost, logger: logger}
}

// Load replaces the cached items with a fresh list from the server.
func (s *State) Load(items []model.Item) {
	s.items = append([]model.Item(nil), items...)
}

// Items returns every cached item, filtered or not.
func (s *State) Items() []model.Item {
	return append([]model.Item(nil), s.items...)
}

// SetFilter selects the status tab. It does not refetch. Unknown statuses
// are ignored.
func (s *State) SetFilter(status string) {
	if model.ValidStatus(status) {
		s.filter = status
	}
}

// Filter returns the selected status tab.
func (s *State) Filter() string {
	return s.filter
}

// Visible returns the cached items whose status matches the selected tab,
// in cached order.
func (s *State) Visible() []model.Item {
	var out []model.Item
	for _, it := range s.items {
		if it.Status == s.filter {
			out = append(out, it)
		}
	}
	return out
}

// Toggle expands the clicked card, collapsing any other. Clicking the
// expanded card collapses it.
func (s *State) Toggle(id int64) {
	if s.expandedID == id {
		s.expandedID = 0
		return
	}
	s.expandedID = id
}

// Expanded reports whether the card with the given id is expanded.
func (s *State) Expanded(id int64) bool {
	return id != 0 && s.expandedID == id
}

// ExpandedID returns the expanded card's id, or 0.
func (s *State) ExpandedID() int64 {
	return s.expandedID
}

// ShowForm opens the submission form.
func (s *State) ShowForm() { s.formVisible = true }

// HideForm closes the submission form.
func (s *State) HideForm() { s.formVisible = false }

// FormVisible reports whether the submission form is open.
func (s *State) FormVisible() bool {
	return s.formVisible
}

// Submitted records a successful submission: the new item goes to the front
// of the cached list and the form closes.
func (s *State) Submitted(item model.Item) {
	s.items = append([]model.Item{item}, s.items...)
	s.formVisible = false
}

// SubmitFailed records a failed submission. The state is left as it was.
func (s *State) SubmitFailed(err error) {
	s.logger.Error("item submission failed", "error", err)
}
