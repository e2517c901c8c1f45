// Package component defines lifecycle interfaces for long-lived
// infrastructure such as the HTTP client, and a Registry that starts them
// in registration order and stops them in reverse.
package component
