// Package meta holds build information stamped in with -ldflags.
package meta

const (
	NilVersion   = "v0.0.0-development"
	NilCommit    = "unknown"
	NilBuildDate = "unknown"
)

var (
	Name        string = "amvisie"
	Description string = "convention based API controllers for fiber and net/http."

	Version   string = NilVersion
	Commit    string = NilCommit
	BuildDate string = NilBuildDate
)

func IsProduction() bool {
	return Version != NilVersion
}

func IsDevelopment() bool {
	return Version == NilVersion
}

// Short returns the version with the abbreviated commit when known.
func Short() string {
	if Commit == NilCommit || Commit == "" {
		return Version
	}
	c := Commit
	if len(c) > 7 {
		c = c[:7]
	}
	return Version + "+" + c
}
