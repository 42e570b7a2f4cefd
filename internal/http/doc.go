// Package http provides the shared HTTP client used for source downloads.
//
// One client is constructed per download run and shared by every concurrent
// fetch. It follows up to 16 redirects, applies a 32 second connect timeout
// (but no overall transfer timeout), and identifies itself with a fixed
// user agent. The standard library's HTTP/1.1 reader already tolerates
// technically invalid response headers, so no extra strictness is layered
// on top; mirrors hosting LFS sources are not uniformly well-behaved.
//
// # Usage
//
//	client, err := http.NewClient(http.DefaultOptions())
//	resp, err := client.Get(ctx, url)
//	defer resp.Body.Close()
package http
