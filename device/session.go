package device

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/atecc/atca"
	"github.com/effective-security/xlog"
)

// ErrSessionActive is returned by Create while a session is live
var ErrSessionActive = errors.New("device session already active")

// live holds at most one session per process.
// The lock serializes claim and Release, readers load the pointer.
var live struct {
	lock    sync.Mutex
	session atomic.Pointer[session]
}

// session owns a backend device while it occupies the live slot
type session struct {
	Device
	released bool
}

// claim creates a backend device and stores it in the live slot.
// The slot lock is held while the backend is created.
func claim(create func() (Device, error)) (Device, error) {
	live.lock.Lock()
	defer live.lock.Unlock()

	if live.session.Load() != nil {
		return nil, ErrSessionActive
	}

	dev, err := create()
	if err != nil {
		return nil, err
	}

	s := &session{Device: dev}
	live.session.Store(s)
	return s, nil
}

// Current returns the live session
func Current() (Device, bool) {
	s := live.session.Load()
	if s == nil {
		return nil, false
	}
	return s, true
}

// CheckNoSession returns ErrSessionActive while a session is live.
// Backends call it before opening a transport.
func CheckNoSession() error {
	if live.session.Load() != nil {
		return ErrSessionActive
	}
	return nil
}

// Release releases the backend device once and clears the live slot
func (s *session) Release() (err error) {
	live.lock.Lock()
	if s.released {
		live.lock.Unlock()
		return atca.StatusNotInitialized
	}
	s.released = true
	live.session.CompareAndSwap(s, nil)
	live.lock.Unlock()

	defer func() {
		if r := recover(); r != nil {
			logger.KV(xlog.ERROR, "reason", "release", "panic", r)
			err = atca.StatusGenFail
		}
	}()

	return s.Device.Release()
}
