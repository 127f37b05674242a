package triage

import (
	"context"
	"log/slog"

	"contact-service/internal/submission"
)

// FilterAll shows every submission regardless of status.
const FilterAll = "all"

// View is the triage view model for a single operator. The loaded list is
// the only source of truth; the selection is an id resolved against it, not
// a second mutable copy, so in-place list updates keep both consistent.
type View struct {
	client     *Client
	logger     *slog.Logger
	items      []submission.Submission
	selectedID string
	filter     string
}

func NewView(client *Client, logger *slog.Logger) *View {
	return &View{
		client: client,
		logger: logger,
		filter: FilterAll,
	}
}

// Load fetches all submissions, already ordered most-recent-first by the
// store. On failure the view stays in an empty-list state; the error is
// logged and not retried.
func (v *View) Load(ctx context.Context) {
	subs, err := v.client.List(ctx)
	if err != nil {
		v.logger.ErrorContext(ctx, "failed to load submissions", "error", err)
		v.items = nil
		return
	}
	v.items = subs
}

// SetFilter accepts "all" or any status value; anything else falls back to
// showing everything.
func (v *View) SetFilter(filter string) {
	if filter != FilterAll && !submission.Status(filter).Valid() {
		filter = FilterAll
	}
	v.filter = filter
}

func (v *View) Filter() string {
	return v.filter
}

// Filtered applies the current filter as a pure in-memory predicate; it
// never re-queries and never re-sorts.
func (v *View) Filtered() []submission.Submission {
	if v.filter == FilterAll {
		return v.items
	}

	var out []submission.Submission
	for _, sub := range v.items {
		if string(sub.Status) == v.filter {
			out = append(out, sub)
		}
	}
	return out
}

// Select marks a submission as the current detail view. Selecting never
// mutates the record; in particular it does not move it to "read".
func (v *View) Select(id string) bool {
	for _, sub := range v.items {
		if sub.ID == id {
			v.selectedID = id
			return true
		}
	}
	return false
}

func (v *View) ClearSelection() {
	v.selectedID = ""
}

// Selected resolves the current selection against the list. Returns nil when
// nothing is selected or the record is gone.
func (v *View) Selected() *submission.Submission {
	if v.selectedID == "" {
		return nil
	}
	for i := range v.items {
		if v.items[i].ID == v.selectedID {
			return &v.items[i]
		}
	}
	return nil
}

// SetStatus drives an explicit status transition. On success the returned
// record replaces the list entry in place, which keeps the detail view
// consistent without a re-fetch. On failure the previous state stays visible.
func (v *View) SetStatus(ctx context.Context, id string, status submission.Status) error {
	updated, err := v.client.UpdateStatus(ctx, id, status)
	if err != nil {
		v.logger.ErrorContext(ctx, "failed to update submission status",
			"id", id, "status", status, "error", err)
		return err
	}

	for i := range v.items {
		if v.items[i].ID == id {
			v.items[i] = *updated
			break
		}
	}
	return nil
}

// Remove permanently deletes a submission and drops it from the list,
// clearing a matching selection.
func (v *View) Remove(ctx context.Context, id string) error {
	if err := v.client.Delete(ctx, id); err != nil {
		v.logger.ErrorContext(ctx, "failed to delete submission", "id", id, "error", err)
		return err
	}

	for i := range v.items {
		if v.items[i].ID == id {
			v.items = append(v.items[:i], v.items[i+1:]...)
			break
		}
	}
	if v.selectedID == id {
		v.selectedID = ""
	}
	return nil
}

// Items exposes the full loaded list, most recent first.
func (v *View) Items() []submission.Submission {
	return v.items
}
