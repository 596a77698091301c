// Package scanner is the header-evaluation and scoring core.
//
// Architecture overview:
//
//   - Registry holds the static catalogue of recognized security headers
//     (essential, advanced, CORS) with their weight, severity and optional
//     configuration Validator. It is built once and never mutated, so
//     concurrent evaluations share it without locking.
//   - Validators are pure functions that turn a present header value into a
//     ConfigIssue (or nil). Parse failures on JSON-shaped headers become
//     issues, never errors.
//   - AnalyzeDisclosure and AnalyzeCookies are the two cross-cutting checks
//     that do not fit the one-header-one-weight model; each accumulates a
//     capped penalty instead of category points.
//   - Evaluate is the single-pass engine: registry-driven findings, category
//     sub-scores, capped analyzer penalties, clamp, round, grade.
//
// Any input, however malformed, yields a valid ScanResult; genuinely fatal
// conditions (unreachable target, bad URL) are represented by the fetch
// collaborator via ErrorResult.
package scanner
