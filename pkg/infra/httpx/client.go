package httpx

import "net/http"

// Client abstracts the HTTP transport so remote-layer clients can be
// exercised in tests without a network.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}
