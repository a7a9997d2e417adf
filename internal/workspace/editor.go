package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonathan/resume-studio/internal/form"
	"github.com/jonathan/resume-studio/internal/types"
	"github.com/jonathan/resume-studio/internal/validation"
)

// ErrEditorClosed is returned by an editor whose document was submitted or discarded.
var ErrEditorClosed = errors.New("editor closed")

// Editor owns the editable copy of one resume for the length of an editing session.
type Editor struct {
	ws *Workspace

	mu     sync.Mutex
	id     int64
	doc    types.EditableResume
	closed bool
}

// NewEditor starts a session on a blank document.
func (w *Workspace) NewEditor() *Editor {
	return &Editor{ws: w, doc: form.NewEditable()}
}

// OpenEditor starts a session on a stored resume.
func (w *Workspace) OpenEditor(ctx context.Context, id int64) (*Editor, error) {
	stored, err := w.svc.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch resume %d: %w", id, err)
	}
	return &Editor{ws: w, id: stored.ID, doc: form.ToEditable(*stored)}, nil
}

// ID returns the stored id, or 0 for a resume that has never been submitted.
func (e *Editor) ID() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.id
}

// Document returns a copy of the editable document.
func (e *Editor) Document() types.EditableResume {
	e.mu.Lock()
	defer e.mu.Unlock()
	return form.Clone(e.doc)
}

// Update replaces the document with fn applied to a copy of it.
func (e *Editor) Update(fn func(types.EditableResume) types.EditableResume) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEditorClosed
	}
	e.doc = fn(form.Clone(e.doc))
	return nil
}

// Validate returns the field errors blocking the document from target.
func (e *Editor) Validate(target types.Status) []types.FieldError {
	e.mu.Lock()
	defer e.mu.Unlock()
	return validation.Validate(e.doc, target)
}

// Submit validates the document for target and stores it. On a validation
// failure nothing is sent. On any failure the document is kept unchanged so
// the caller can retry. On success the stored document is propagated to every
// mounted list and the editor is closed.
func (e *Editor) Submit(ctx context.Context, target types.Status) (*types.Resume, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrEditorClosed
	}

	doc := form.Clone(e.doc)
	doc.Status = target
	if fields := validation.Validate(doc, target); len(fields) > 0 {
		return nil, &ValidationFailedError{Target: target, Fields: fields}
	}
	payload := form.ToSubmission(doc)

	var (
		stored *types.Resume
		err    error
	)
	if e.id == 0 {
		stored, err = e.ws.svc.Create(ctx, payload)
		if err == nil {
			e.ws.sync.Apply(*stored)
		}
	} else {
		ticket := e.ws.sync.Begin(e.id)
		stored, err = e.ws.svc.Replace(ctx, e.id, payload)
		if err == nil {
			e.ws.sync.ApplyTicket(ticket, *stored)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save resume: %w", err)
	}

	e.id = stored.ID
	e.doc = types.EditableResume{}
	e.closed = true
	return stored, nil
}

// Close discards the editable document.
func (e *Editor) Close() {
	e.mu.Lock()
	e.doc = types.EditableResume{}
	e.closed = true
	e.mu.Unlock()
}
