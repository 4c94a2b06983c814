// Package preflight provides readiness checks for the filesystem paths and
// external binaries framed depends on.
//
// These checks run in two contexts:
//   - Both daemons call RunAll at startup and refuse to start on a failure,
//     so a misconfigured media directory surfaces immediately instead of as
//     a silent black screen.
//   - The CLI "framed status" command renders the same results for
//     troubleshooting.
package preflight
