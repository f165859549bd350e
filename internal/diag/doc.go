// Package diag collects structured diagnostics during an import.
//
// The Context is the single accumulator threaded by reference through
// parser, converter, and assembler. Every recovered defect, applied
// default, and skipped element becomes a Warning; warnings never abort
// the pipeline. Finalize sorts and deduplicates the collected list so
// the output order is deterministic regardless of processing order.
//
// Severity taxonomy:
//   - Info: a default was substituted, no data lost
//   - Warning: a structural defect was recovered, content preserved
//   - Error: content was skipped or truncated, data lost but import continues
//
// A Context is owned exclusively by one import call. It is not safe
// for concurrent use and never shared between imports.
package diag
