package ports

import "net/http"

// HTTPClient performs provider requests. *http.Client satisfies it, and
// tests substitute stubs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
