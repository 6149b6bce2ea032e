// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing conversation histories and scripted model
// responses. They are not intended for production usage.
package testutil
