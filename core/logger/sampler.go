package logger

import (
	"strconv"
	"strings"
	"sync"
)

// ratioSampler passes num out of every den events. A zero ratio passes all.
type ratioSampler struct {
	mu       sync.Mutex
	num, den int
	n        int
}

func (s *ratioSampler) Set(num, den int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if num <= 0 || den <= 0 {
		num, den = 0, 0
	}
	if num > den {
		num = den
	}
	s.num, s.den, s.n = num, den, 0
}

func (s *ratioSampler) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.den == 0 {
		return true
	}
	s.n = s.n%s.den + 1
	return s.n <= s.num
}

// parseRatio accepts "n/d" or "d" (meaning 1/d). Invalid input yields 0, 0.
func parseRatio(raw string) (int, int) {
	raw = strings.TrimSpace(raw)
	if a, b, ok := strings.Cut(raw, "/"); ok {
		num, err1 := strconv.Atoi(strings.TrimSpace(a))
		den, err2 := strconv.Atoi(strings.TrimSpace(b))
		if err1 != nil || err2 != nil {
			return 0, 0
		}
		return num, den
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 {
		return 1, v
	}
	return 0, 0
}
