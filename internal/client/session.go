package client

import (
	"context"

	"github.com/erazemk/lostfound/internal/view"
)

// Session binds a Client to a list view, applying server responses to the
// view the way the browser page does.
type Session struct {
	Client *Client
	View   *view.State
}

// NewSession creates a session with a fresh view.
func NewSession(c *Client, v *view.State) *Session {
	return &Session{Client: c, View: v}
}

// Refresh reloads the view's items from the server. On failure the view
// keeps its cached items.
func (s *Session) Refresh(ctx context.Context) error {
	items, err := s.Client.ListItems(ctx)
	if err != nil {
		return err
	}
	s.View.Load(items)
	return nil
}

// Submit sends a new item. On success the stored item is prepended to the
// view and the form closes; on failure the view is unchanged apart from the
// logged error.
func (s *Session) Submit(ctx context.Context, sub Submission) error {
	item, err := s.Client.Submit(ctx, sub)
	if err != nil {
		s.View.SubmitFailed(err)
		return err
	}
	s.View.Submitted(*item)
	return nil
}
