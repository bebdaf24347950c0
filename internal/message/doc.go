// Package message models the composable text message exchanged with an
// echo server.
//
// # Overview
//
// A Message is a value: the text plus a closed set of boolean display
// modifiers. Values are copied on every write, so the session's write
// buffer and inbox never share a Message mutably.
//
//   - echo: whether the display honors the echoed text (default true).
//   - caps: upper-case the displayed text.
//   - rvrs: reverse the displayed text.
//
// # Field Maps
//
// New and Modify accept a Fields map keyed by "text" or a modifier name.
// Each key is validated on its own. A mis-typed or unknown key is reported
// in the returned error and skipped, while every valid key in the same map
// is still applied. Callers that need all-or-nothing semantics must
// validate the map themselves before calling Modify.
//
// # Directive Parsing
//
// ParseText turns shell input such as ";noecho ;caps hello world" into a
// Fields map. Leading tokens starting with ';' are directives; the first
// plain token, or an explicit ";text" marker, starts the literal text.
//
// # Rendering
//
// Render produces either the Fancy form (modifiers applied, caps before
// reverse, empty when echo is off) or the Raw debug form listing the text
// and every modifier.
package message
