// Package payload turns a recipient and its assigned template into the
// provider wire message.
//
// Building is pure: no I/O and no shared state, so a single Builder may be
// used from any number of workers.
package payload
