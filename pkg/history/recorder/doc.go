// Package recorder writes compilation records to history storage
// asynchronously, keeping record persistence off the compile path.
//
// # Recording Flow
//
// A caller builds a history.Record describing one compilation run and
// hands it to Record. The recorder fills in missing identity fields
// (ID, timestamp, source hash, byte counts), truncates oversized text
// fields, and enqueues the record onto a buffered channel. A background
// worker drains the channel and writes each record to storage with a
// bounded timeout.
//
//	Compile ──▶ Record() ──▶ [buffered channel] ──▶ worker ──▶ Storage
//
// # Asynchronous Semantics
//
// Record never blocks. If the buffer is full the record is dropped and
// Record returns a history.RecorderError wrapping ErrBufferFull; the
// compilation itself is unaffected. Close drains all buffered records
// before returning, so records accepted before shutdown are not lost.
//
// # Hashing
//
// Source text is hashed with SHA-256 (HashString) so identical inputs
// can be correlated across records without comparing full text. Inputs
// over MaxHashSize are truncated before hashing.
//
// # Truncation
//
// Source and output text stored in a record are capped at
// Config.MaxFieldLength bytes. The hash and the byte counts are
// computed before truncation and always describe the full text.
//
// # Thread Safety
//
// Record and Close are safe for concurrent use. Close is idempotent.
package recorder
