package view

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/erazemk/lostfound/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ids(items []model.Item) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func sample() []model.Item {
	return []model.Item{
		{ID: 5, Title: "Umbrella", Status: model.StatusFound},
		{ID: 4, Title: "Phone", Status: model.StatusLost},
		{ID: 3, Title: "Keys", Status: model.StatusFound},
		{ID: 2, Title: "Scarf", Status: model.StatusLost},
		{ID: 1, Title: "Wallet", Status: model.StatusLost},
	}
}

func TestInitialState(t *testing.T) {
	s := New(quiet())

	assert.Equal(t, model.StatusLost, s.Filter())
	assert.False(t, s.FormVisible())
	assert.Zero(t, s.ExpandedID())
	assert.Empty(t, s.Items())
	assert.Empty(t, s.Visible())
}

func TestLoadReplacesWholesale(t *testing.T) {
	s := New(quiet())
	s.Load(sample())
	s.Load([]model.Item{{ID: 9, Status: model.StatusLost}})

	if diff := cmp.Diff([]int64{9}, ids(s.Items())); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterPartitionsItems(t *testing.T) {
	s := New(quiet())
	s.Load(sample())

	lost := ids(s.Visible())
	if diff := cmp.Diff([]int64{4, 2, 1}, lost); diff != "" {
		t.Errorf("lost tab mismatch (-want +got):\n%s", diff)
	}

	s.SetFilter(model.StatusFound)
	found := ids(s.Visible())
	if diff := cmp.Diff([]int64{5, 3}, found); diff != "" {
		t.Errorf("found tab mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, append(lost, found...), len(sample()), "tabs should partition the list")

	s.SetFilter("stolen")
	assert.Equal(t, model.StatusFound, s.Filter(), "unknown filters are ignored")
}

func TestToggleSingleSelection(t *testing.T) {
	s := New(quiet())
	s.Load(sample())

	s.Toggle(4)
	assert.True(t, s.Expanded(4))

	s.Toggle(2)
	assert.True(t, s.Expanded(2))
	assert.False(t, s.Expanded(4), "expanding another card collapses the first")

	s.Toggle(2)
	assert.False(t, s.Expanded(2))
	assert.Zero(t, s.ExpandedID())
}

func TestSubmittedPrependsAndHidesForm(t *testing.T) {
	s := New(quiet())
	s.Load(sample())
	s.ShowForm()

	s.Submitted(model.Item{ID: 6, Title: "Bike lock", Status: model.StatusLost})

	assert.False(t, s.FormVisible())
	if diff := cmp.Diff([]int64{6, 5, 4, 3, 2, 1}, ids(s.Items())); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, int64(6), s.Visible()[0].ID)
}

func TestSubmitFailedKeepsState(t *testing.T) {
	s := New(quiet())
	s.Load(sample())
	s.ShowForm()
	s.Toggle(1)

	s.SubmitFailed(errors.New("network down"))

	assert.True(t, s.FormVisible())
	assert.True(t, s.Expanded(1))
	assert.Len(t, s.Items(), len(sample()))
}

func TestLoadCopiesInput(t *testing.T) {
	items := sample()
	s := New(quiet())
	s.Load(items)
	items[0].Title = "changed"

	assert.Equal(t, "Umbrella", s.Items()[0].Title)
}
