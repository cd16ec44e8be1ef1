// Package token holds the session bearer credential granted by the host
// platform. The credential lives in process memory only: it is never
// written to disk, to the environment, or to any browser-persistent
// store, and it must never appear in logs or error text.
package token

import "sync"

// Carrier is the single owner of the current bearer credential.
//
// The credential is replaced wholesale whenever the host platform signals
// a refresh, and cleared when the session is invalidated. Renewal is
// externally driven; the Carrier never fetches or refreshes on its own.
//
// All proxied calls read the Carrier concurrently while refresh events
// may overwrite it at any time. The only guarantee is an atomic read of
// the current value: requests already in flight may carry a credential
// that has since become stale.
type Carrier struct {
	mu    sync.RWMutex
	value string
}

// NewCarrier returns an empty Carrier holding no credential.
func NewCarrier() *Carrier {
	return &Carrier{}
}

// Get returns the current credential and whether one is held.
func (c *Carrier) Get() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.value != ""
}

// Set replaces the credential wholesale. An empty value clears it.
func (c *Carrier) Set(credential string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = credential
}

// Clear drops the credential, returning the Carrier to its empty state.
func (c *Carrier) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = ""
}

// Present reports whether a credential is currently held.
func (c *Carrier) Present() bool {
	_, ok := c.Get()
	return ok
}
