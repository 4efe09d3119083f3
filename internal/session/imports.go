package session

import (
	"errors"
	"log/slog"

	"github.com/mmynk/assetsplitter/internal/codec"
	"github.com/mmynk/assetsplitter/internal/notify"
)

// ErrNoImportPending is returned by CancelImport outside an import.
var ErrNoImportPending = errors.New("no import in progress")

// ImportState is the position of the import flow.
type ImportState int

const (
	ImportIdle ImportState = iota
	ImportAwaitingFile
)

func (s ImportState) String() string {
	if s == ImportAwaitingFile {
		return "awaiting_file"
	}
	return "idle"
}

// ImportOutcome is the result of the most recent import attempt.
type ImportOutcome int

const (
	OutcomeNone ImportOutcome = iota
	OutcomeApplied
	OutcomeRejected
)

func (o ImportOutcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeRejected:
		return "rejected"
	default:
		return "none"
	}
}

type importFlow struct {
	state   ImportState
	outcome ImportOutcome
	err     error
}

// BeginImport opens the import flow. It is a no-op if already open.
func (s *Session) BeginImport() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imports.state = ImportAwaitingFile
	s.imports.err = nil
}

// CancelImport closes the import flow without touching state.
func (s *Session) CancelImport() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.imports.state != ImportAwaitingFile {
		return ErrNoImportPending
	}
	s.imports.state = ImportIdle
	s.imports.err = nil
	return nil
}

// ImportState reports where the import flow is.
func (s *Session) ImportState() ImportState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imports.state
}

// LastImport returns the outcome of the most recent attempt and, for a
// rejection, the error shown to the user.
func (s *Session) LastImport() (ImportOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imports.outcome, s.imports.err
}

// ImportFile parses data and, if it is a valid document, replaces the whole
// state with it. The file name is only logged; the extension is not checked.
//
// A rejected file leaves the state untouched and the flow where it was:
// still awaiting a file if the flow was opened, idle for a direct drop.
// An applied file closes the flow.
func (s *Session) ImportFile(name string, data []byte) error {
	state, err := codec.Import(data)
	if err != nil {
		s.mu.Lock()
		s.imports.outcome = OutcomeRejected
		s.imports.err = err
		s.mu.Unlock()

		s.metrics.RecordImport(OutcomeRejected.String())
		slog.Warn("Import rejected", "file", name, "error", err)
		return err
	}

	// An applied import is always written, even if it matches what is held.
	s.replace(state, true)

	s.mu.Lock()
	s.imports.state = ImportIdle
	s.imports.outcome = OutcomeApplied
	s.imports.err = nil
	s.mu.Unlock()

	s.metrics.RecordImport(OutcomeApplied.String())
	slog.Info("Import applied", "file", name, "assets", len(state.Assets))
	s.notify(notify.MsgSaved)
	return nil
}
