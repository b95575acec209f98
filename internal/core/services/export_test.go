package services

import "time"

// SetSleepForTest replaces the retry sleep so backoff tests run instantly.
func (s *MirrorService) SetSleepForTest(fn func(time.Duration)) {
	s.sleep = fn
}
