package application

import (
	"sync"
	"time"
)

// session holds the plaintext passcode of the unlocked wallet. Every use of
// the passcode extends its expiration by ttl.
type session struct {
	lock     *sync.Mutex
	ttl      time.Duration
	passcode string
	expiry   time.Time
	now      func() time.Time
}

func newSession(ttl time.Duration) *session {
	return &session{
		lock: &sync.Mutex{},
		ttl:  ttl,
		now:  time.Now,
	}
}

func (s *session) open(passcode string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.passcode = passcode
	s.expiry = s.now().Add(s.ttl)
}

func (s *session) close() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.passcode = ""
	s.expiry = time.Time{}
}

// get returns the passcode if the session is still valid and extends it.
func (s *session) get() (string, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(s.passcode) <= 0 || !s.now().Before(s.expiry) {
		return "", false
	}
	s.expiry = s.now().Add(s.ttl)
	return s.passcode, true
}

func (s *session) isOpen() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.passcode) > 0 && s.now().Before(s.expiry)
}

// isExpired returns true only for an open session whose ttl elapsed.
func (s *session) isExpired() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.passcode) > 0 && !s.now().Before(s.expiry)
}
