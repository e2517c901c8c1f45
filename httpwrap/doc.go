// Package httpwrap exposes an HTTP client through the Client interface so
// calling code can swap the real client for a test double.
//
// Wrapper forwards every property and operation to an *httpclient.Client
// and returns its results and errors unchanged. It adds no retry, timeout,
// routing or caching of its own.
//
//	hc, err := httpclient.New(cfg.HTTPClient)
//	if err != nil {
//	    return err
//	}
//	var client httpwrap.Client
//	client, err = httpwrap.New(hc)
//
// In tests, use httpwraptest.Fake instead.
package httpwrap
