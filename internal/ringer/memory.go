package ringer

import (
	"sync"

	apperrors "github.com/julianstephens/automute/internal/errors"
	"github.com/julianstephens/automute/internal/models"
)

// Memory is an in-process Port for tests. It records every write.
type Memory struct {
	mu     sync.Mutex
	mode   models.RingerMode
	filter models.InterruptionFilter

	// Denied makes every call fail with ErrPermissionDenied
	Denied bool
	// FailFilter and FailMode make the matching setter fail
	FailFilter error
	FailMode   error

	Writes []string
}

func NewMemory() *Memory {
	return &Memory{mode: models.RingerNormal, filter: models.FilterAll}
}

func (m *Memory) RingerMode() (models.RingerMode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Denied {
		return "", apperrors.ErrPermissionDenied
	}
	return m.mode, nil
}

func (m *Memory) SetRingerMode(mode models.RingerMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Denied {
		return apperrors.ErrPermissionDenied
	}
	if m.FailMode != nil {
		return m.FailMode
	}
	m.mode = mode
	m.Writes = append(m.Writes, "mode="+string(mode))
	return nil
}

func (m *Memory) InterruptionFilter() (models.InterruptionFilter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Denied {
		return "", apperrors.ErrPermissionDenied
	}
	return m.filter, nil
}

func (m *Memory) SetInterruptionFilter(filter models.InterruptionFilter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Denied {
		return apperrors.ErrPermissionDenied
	}
	if m.FailFilter != nil {
		return m.FailFilter
	}
	m.filter = filter
	m.Writes = append(m.Writes, "filter="+string(filter))
	return nil
}

// Manual sets the ringer as the user would, without recording a write.
func (m *Memory) Manual(mode models.RingerMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
}

// Mode returns the current ringer mode regardless of access.
func (m *Memory) Mode() models.RingerMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Filter returns the current interruption filter regardless of access.
func (m *Memory) Filter() models.InterruptionFilter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter
}
