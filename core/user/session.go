package user

import "sync"

// Session is the per-process client session: the authenticated identity and
// transient view state the engines share. It replaces what the web client
// kept in module-level globals.
type Session struct {
	mu sync.Mutex

	usr   User
	authd bool

	// editingReportID is the single "edit mode" slot: at most one report may
	// be under revision at a time; entering edit mode for another report
	// silently replaces the slot (last-writer-wins on unsaved form input).
	editingReportID *int
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) SetUser(usr User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usr = usr
	s.authd = true
}

// User returns the current identity and whether anyone is logged in.
func (s *Session) User() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usr, s.authd
}

// Clear drops the identity and any edit state; used on logout and 401.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usr = User{}
	s.authd = false
	s.editingReportID = nil
}

// BeginEditing marks reportID as being revised and returns the id it
// replaced, if any.
func (s *Session) BeginEditing(reportID int) (replaced int, wasEditing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editingReportID != nil {
		replaced, wasEditing = *s.editingReportID, true
	}
	id := reportID
	s.editingReportID = &id
	return replaced, wasEditing
}

func (s *Session) EditingReportID() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editingReportID == nil {
		return 0, false
	}
	return *s.editingReportID, true
}

func (s *Session) StopEditing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editingReportID = nil
}
