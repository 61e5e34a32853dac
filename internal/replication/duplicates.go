package replication

import "sync"

// nameSet is the mutex-guarded accepted-pipeline-name set spec §4.5 point 3
// and §5 require: insertion and lookup are a single critical section, so
// two workers racing on the same name can never both "win".
type nameSet struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newNameSet() *nameSet {
	return &nameSet{seen: make(map[string]bool)}
}

// add reports whether name was newly accepted (true) or was already
// present (false, meaning the caller lost the race and must SKIP).
func (s *nameSet) add(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[name] {
		return false
	}
	s.seen[name] = true
	return true
}
