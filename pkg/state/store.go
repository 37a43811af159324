package state

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/core-tools/nagios-k8s-charm/pkg/errors"
	"github.com/core-tools/nagios-k8s-charm/pkg/logging"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

const (
	lockSuffix     = ".lock"
	lockRetryDelay = 25 * time.Millisecond
	stateFileMode  = 0o600
	stateDirMode   = 0o755
)

// DefaultLockWait bounds how long Update waits for another hook to finish
const DefaultLockWait = 30 * time.Second

// Store persists State as a YAML file guarded by a file lock
type Store struct {
	path     string
	lockWait time.Duration
	logger   logging.Logger
}

func NewStore(path string, lockWait time.Duration, logger logging.Logger) *Store {
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &Store{
		path:     path,
		lockWait: lockWait,
		logger:   logger,
	}
}

// Path returns the state file path
func (s *Store) Path() string {
	return s.path
}

// Update locks the store, loads the state and passes a copy to fn. The copy
// is saved only if fn returns nil.
func (s *Store) Update(ctx context.Context, fn func(*State) error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), stateDirMode); err != nil {
		return errors.NewIOError("failed to create state directory", err).WithContext("path", s.path)
	}

	lock := flock.New(s.path + lockSuffix)
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil || !locked {
		if ctx.Err() != nil {
			return errors.NewCancelledError("cancelled waiting for state lock", ctx.Err())
		}
		return errors.NewTimeoutError("failed to acquire state lock", err).
			WithContext("lock", lock.Path()).
			WithContext("wait", s.lockWait.String())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warnf("Failed to release state lock, path: %s, error: %v", lock.Path(), err)
		}
	}()

	current, err := s.Load()
	if err != nil {
		return err
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return err
	}

	return s.save(next)
}

// Load reads the state file. A missing file yields an empty state.
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debugf("No state file yet, path: %s", s.path)
			return New(), nil
		}
		return nil, errors.NewIOError("failed to read state file", err).WithContext("path", s.path)
	}

	st := New()
	if err := yaml.Unmarshal(data, st); err != nil {
		return nil, errors.NewValidationError("failed to parse state file", err).WithContext("path", s.path)
	}
	if st.Targets == nil {
		st.Targets = make(map[string]string)
	}
	if st.ExtraConfig == nil {
		st.ExtraConfig = []string{}
	}
	return st, nil
}

// save writes to a temporary file and renames it over the state file
func (s *Store) save(st *State) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return errors.NewInternalError("failed to encode state", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.NewIOError("failed to create temporary state file", err).WithContext("path", s.path)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.NewIOError("failed to write state file", err).WithContext("path", tmpPath)
	}
	if err := tmp.Chmod(stateFileMode); err != nil {
		tmp.Close()
		return errors.NewPermissionError("failed to set state file mode", err).WithContext("path", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewIOError("failed to close state file", err).WithContext("path", tmpPath)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return errors.NewIOError("failed to replace state file", err).WithContext("path", s.path)
	}

	s.logger.Debugf("State saved, path: %s, targets: %d, extraconfig entries: %d", s.path, len(st.Targets), len(st.ExtraConfig))
	return nil
}
