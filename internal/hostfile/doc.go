// Package hostfile reads host configuration files into sanitized lines.
//
// Reading never fails past this package: a missing file is logged as a
// warning and an unreadable one (permissions, directory, ...) as an error,
// and in both cases the caller receives an empty line list. Inspectors can
// therefore always produce a complete, possibly partial, result.
//
// All access goes through an afero.Fs so inspectors can be exercised against
// an in-memory filesystem:
//
//	r := &hostfile.Reader{Fs: afero.NewMemMapFs()}
//	lines := hostfile.Sanitize(r.ReadLines("/etc/ssh/sshd_config"))
package hostfile
