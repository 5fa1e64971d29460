// Package database provides SQLite-based local storage of analysis
// history and model records. Every analyze run is stored here so that
// past results can be listed and compared without calling the service
// again.
//
// The database lives in a single file under the XDG data directory and
// uses modernc.org/sqlite, a pure-Go driver, so no cgo toolchain is
// needed to build.
package database
