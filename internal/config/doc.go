// Package config provides configuration structures and utilities for
// formscan. It defines the options controlling the service connection,
// training-completion polling, concurrent analysis, and report output,
// along with discovery and loading of the optional .formscan yaml file.
package config
