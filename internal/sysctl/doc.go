// Package sysctl reads kernel parameter settings from sysctl.conf and the
// sysctl.d directory and compares them, file by file, against a target.
package sysctl
