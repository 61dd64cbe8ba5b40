// Package secctx carries the per-request security context and coordinates
// credential refresh.
//
// The security context is stored in [context.Context]. Code that needs the
// caller's bearer credential reads it with [CurrentCredential] instead of
// receiving it as a parameter, so the value follows the request through
// every goroutine and call chain that is handed the request's context.
//
// [RefreshCoordinator] makes sure at most one refresh runs per key at a
// time. Concurrent callers for the same key share the in-flight result.
package secctx
