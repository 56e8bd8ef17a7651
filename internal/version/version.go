// Package version carries build metadata injected via -ldflags.
package version

// Version is the marketing version compared against the remote release string.
var Version = "1.0"

// Commit is the VCS revision the binary was built from.
var Commit = ""

// BuildDate is the UTC build timestamp.
var BuildDate = ""
