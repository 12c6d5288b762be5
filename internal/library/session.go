package library

import (
	"errors"
	"fmt"
)

// ErrSessionTransition signals an upload-session transition that is not
// allowed from the current phase.
var ErrSessionTransition = errors.New("invalid upload session transition")

// UploadPhase names the explicit states of an upload flow.
type UploadPhase string

const (
	PhaseIdle        UploadPhase = "idle"
	PhaseStarted     UploadPhase = "started"
	PhaseFileChosen  UploadPhase = "file_chosen"
	PhaseCoverChosen UploadPhase = "cover_chosen"
	PhaseConfirmed   UploadPhase = "confirmed"
)

// UploadSession is the explicit session state of one upload flow: a value
// with named fields mutated only through its transition functions, replacing
// ambient form state. Transitions are pure; each returns the next state and
// leaves the receiver untouched.
type UploadSession struct {
	Phase    UploadPhase
	FileName string
	FileSize int64
	HasCover bool
}

// NewUploadSession returns the idle state.
func NewUploadSession() UploadSession {
	return UploadSession{Phase: PhaseIdle}
}

// Begin starts a fresh upload flow. Allowed from any phase; any previously
// chosen file or cover is discarded.
func (s UploadSession) Begin() UploadSession {
	return UploadSession{Phase: PhaseStarted}
}

// ChooseFile records the picked file. Allowed once the flow has started;
// re-picking replaces the earlier choice and drops a chosen cover.
func (s UploadSession) ChooseFile(name string, size int64) (UploadSession, error) {
	switch s.Phase {
	case PhaseStarted, PhaseFileChosen, PhaseCoverChosen:
		return UploadSession{Phase: PhaseFileChosen, FileName: name, FileSize: size}, nil
	default:
		return s, fmt.Errorf("%w: choose file from %q", ErrSessionTransition, s.Phase)
	}
}

// ChooseCover records that a cover image was picked. Requires a chosen file.
func (s UploadSession) ChooseCover() (UploadSession, error) {
	switch s.Phase {
	case PhaseFileChosen, PhaseCoverChosen:
		next := s
		next.Phase = PhaseCoverChosen
		next.HasCover = true
		return next, nil
	default:
		return s, fmt.Errorf("%w: choose cover from %q", ErrSessionTransition, s.Phase)
	}
}

// Confirm finalizes the flow. Requires a chosen file; the cover is optional.
func (s UploadSession) Confirm() (UploadSession, error) {
	switch s.Phase {
	case PhaseFileChosen, PhaseCoverChosen:
		next := s
		next.Phase = PhaseConfirmed
		return next, nil
	default:
		return s, fmt.Errorf("%w: confirm from %q", ErrSessionTransition, s.Phase)
	}
}

// Reset abandons the flow and returns to idle.
func (s UploadSession) Reset() UploadSession {
	return UploadSession{Phase: PhaseIdle}
}
