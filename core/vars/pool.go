// Package vars implements the thread-partitioned variable pool that carries
// values between invocations issued by the same logical execution thread.
//
// Each logical thread owns a private partition, created lazily on first
// write. Partitions of different threads never block each other; the
// top-level thread map uses atomic insert-if-absent so that concurrent first
// writes create exactly one partition.
package vars

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

const (
	referencePrefix = "${"
	referenceSuffix = "}"
)

// ErrInvalidName is returned when a variable name does not match the
// required identifier format.
var ErrInvalidName = errors.New("invalid variable name")

var nameRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CallResult wraps a value produced by a prior invocation. Stored results
// are exempt from literal and reference re-parsing: a wrapped string that
// happens to look like "${x}" or a quoted literal is passed through
// verbatim.
type CallResult struct {
	Value any
}

// Pool stores variables partitioned by logical thread ID. The zero value is
// not usable; create instances with NewPool.
type Pool struct {
	partitions sync.Map // threadID (string) -> *partition
}

type partition struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewPool creates an empty variable pool.
func NewPool() *Pool {
	return &Pool{}
}

// Set assigns value to name in the partition of threadID, overwriting any
// previous value. It returns ErrInvalidName if the name is malformed.
func (p *Pool) Set(threadID, name string, value any) error {
	if !IsValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	part := p.partition(threadID)
	part.mu.Lock()
	part.values[name] = value
	part.mu.Unlock()

	return nil
}

// Get returns the value assigned to name in the partition of threadID and
// whether such a value exists.
func (p *Pool) Get(threadID, name string) (any, bool) {
	part, ok := p.lookup(threadID)
	if !ok {
		return nil, false
	}

	part.mu.RLock()
	value, ok := part.values[name]
	part.mu.RUnlock()

	return value, ok
}

// Contains reports whether name is assigned in the partition of threadID.
func (p *Pool) Contains(threadID, name string) bool {
	_, ok := p.Get(threadID, name)
	return ok
}

// Remove deletes name from the partition of threadID and returns the removed
// value, if any.
func (p *Pool) Remove(threadID, name string) (any, bool) {
	part, ok := p.lookup(threadID)
	if !ok {
		return nil, false
	}

	part.mu.Lock()
	value, ok := part.values[name]
	delete(part.values, name)
	part.mu.Unlock()

	return value, ok
}

// RemoveAll deletes every variable in the partition of threadID.
func (p *Pool) RemoveAll(threadID string) {
	part, ok := p.lookup(threadID)
	if !ok {
		return
	}

	part.mu.Lock()
	part.values = make(map[string]any)
	part.mu.Unlock()
}

// partition returns the partition owned by threadID, creating it atomically
// on first write.
func (p *Pool) partition(threadID string) *partition {
	if part, ok := p.partitions.Load(threadID); ok {
		return part.(*partition)
	}

	part, _ := p.partitions.LoadOrStore(threadID, &partition{values: make(map[string]any)})

	return part.(*partition)
}

// lookup returns the partition owned by threadID without creating one.
func (p *Pool) lookup(threadID string) (*partition, bool) {
	part, ok := p.partitions.Load(threadID)
	if !ok {
		return nil, false
	}

	return part.(*partition), true
}

// IsValidName reports whether name matches the variable identifier format.
func IsValidName(name string) bool {
	return nameRegexp.MatchString(name)
}

// IsReference reports whether s is a well-formed variable reference of the
// form "${name}".
func IsReference(s string) bool {
	_, ok := ReferenceName(s)
	return ok
}

// ReferenceName extracts the variable name from a reference of the form
// "${name}". The second return value is false when s is not a well-formed
// reference.
func ReferenceName(s string) (string, bool) {
	if !strings.HasPrefix(s, referencePrefix) || !strings.HasSuffix(s, referenceSuffix) {
		return "", false
	}

	name := s[len(referencePrefix) : len(s)-len(referenceSuffix)]
	if !IsValidName(name) {
		return "", false
	}

	return name, true
}

// Reference formats name as an external variable reference, "${name}".
func Reference(name string) string {
	return referencePrefix + name + referenceSuffix
}
