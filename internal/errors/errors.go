package errors

import (
	"sync"
)

// Collector gathers the recoverable problems of a build so they can be
// reported once the run finishes.
type Collector struct {
	errs  []error
	mutex sync.RWMutex
}

// NewCollector creates a new error collector.
func NewCollector() *Collector {
	return &Collector{
		errs: make([]error, 0),
	}
}

// Add records an error. Nil errors are ignored.
func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errs = append(c.errs, err)
}

// HasErrors returns true if anything was collected.
func (c *Collector) HasErrors() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.errs) > 0
}

// ByCode returns the collected errors carrying the given code.
func (c *Collector) ByCode(code string) []error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	var matched []error
	for _, err := range c.errs {
		if ae, ok := err.(*AssetError); ok && ae.Code == code {
			matched = append(matched, err)
		}
	}
	return matched
}

// Clear clears all errors.
func (c *Collector) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errs = c.errs[:0]
}
