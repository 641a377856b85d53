// Package testutil contains helper transforms and graph builders used across
// tests to reduce boilerplate when constructing chains and asserting engine
// behavior. These helpers are intentionally minimal and avoid adding
// third-party dependencies. They are not intended for production usage.
package testutil
