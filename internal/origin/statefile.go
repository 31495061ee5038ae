package origin

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"VoteBridge/internal/attest"
)

// StateFile is a Source backed by a JSON export of the origin contract state.
type StateFile struct {
	path string

	mu    sync.RWMutex
	state State
}

// OpenStateFile loads the state at path.
func OpenStateFile(path string) (*StateFile, error) {
	f := &StateFile{path: path}

	if err := f.Reload(); err != nil {
		return nil, err
	}

	return f, nil
}

// Reload rereads the file. The previous state is kept on failure.
func (f *StateFile) Reload() error {
	state, err := ReadState(f.path)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.state = state
	f.mu.Unlock()

	return nil
}

// Result implements Source.
func (f *StateFile) Result(voteID uint32) (attest.VoteResult, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	r, ok := f.state.Find(voteID)
	if !ok {
		return attest.VoteResult{}, false
	}

	return r.Result(), true
}

// Record returns the full record for voteID, proof included.
func (f *StateFile) Record(voteID uint32) (Record, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	r, ok := f.state.Find(voteID)
	if !ok {
		return Record{}, fmt.Errorf("vote %d: %w", voteID, ErrUnknownVote)
	}

	return r, nil
}

// ReadState decodes a state file.
func ReadState(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, fmt.Errorf("read state file:\n%w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("parse state file %s:\n%w", path, err)
	}

	return state, nil
}

// WriteState encodes state to path, replacing the file atomically.
func WriteState(path string, state State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state:\n%w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write state file:\n%w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace state file:\n%w", err)
	}

	return nil
}
