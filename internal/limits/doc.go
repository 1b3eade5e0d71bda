// Package limits reads pam_limits configuration from limits.conf and the
// limits.d drop-in directory and compares it against a target list of
// entries.
//
// Every non-comment line has the form
//
//	<domain> <type> <item> <value>
//
// and is kept together with the file it was read from.
package limits
