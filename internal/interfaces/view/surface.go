package view

import "sync"

// SnapshotSurface keeps the last rendered page in memory. Transports that
// cannot push to a client (the HTTP adapter) read it after an event.
type SnapshotSurface struct {
	mu      sync.RWMutex
	page    Page
	errs    []error
	renders int
	patches int
}

// NewSnapshotSurface creates a surface showing an empty page
func NewSnapshotSurface() *SnapshotSurface {
	return &SnapshotSurface{}
}

// Render implements Surface
func (s *SnapshotSurface) Render(page Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = page
	s.renders++
}

// PatchRow implements Surface. A row that is not on the page is ignored.
func (s *SnapshotSurface) PatchRow(row RowViewModel, totals Totals) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]RowViewModel, len(s.page.Rows))
	copy(rows, s.page.Rows)
	for i := range rows {
		if !rows[i].Placeholder && rows[i].ID == row.ID {
			rows[i] = row
			break
		}
	}
	s.page.Rows = rows
	s.page.Totals = totals
	s.patches++
}

// ReportError implements Surface
func (s *SnapshotSurface) ReportError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

// Page returns a copy of the current page
func (s *SnapshotSurface) Page() Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	page := s.page
	page.Rows = append([]RowViewModel(nil), s.page.Rows...)
	return page
}

// Errors returns the errors reported so far and forgets them
func (s *SnapshotSurface) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	errs := s.errs
	s.errs = nil
	return errs
}

// Renders returns the number of full renders and row patches
func (s *SnapshotSurface) Renders() (full, patched int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.renders, s.patches
}

var _ Surface = (*SnapshotSurface)(nil)
