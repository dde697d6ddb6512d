// Package runner provides a single-entry-point coroutine runner modeled on
// Python's asyncio.run(): it drives one root function to completion, then
// cancels and awaits every background task it spawned along the way,
// logging anything left unhandled (original_source/Lib/asyncio/runners.py).
//
// Unlike asyncio.run(), Run does not manage an event loop — Go's scheduler
// already multiplexes goroutines onto OS threads — but it preserves the
// reentrancy guard, the finalization-cancels-everything sequence, and the
// unhandled-exception logging asyncio.run() performs on the way out.
package runner
