// Package conf loads the settings of sysconfig-inspector itself: the default
// log level and report format, and where the inspected host files live.
//
// # Usage
//
// The global Configuration variable is loaded at package initialization.
// If the default files cannot be read, Configuration holds the embedded
// defaults and LoadErr holds the error:
//
//	import "github.com/redhatinsights/sysconfig-inspector/internal/conf"
//
//	func main() {
//	    fmt.Println(conf.Configuration.SSHDConfig)
//	}
//
// A different file, such as one given on the command line, is read with
// ConfigSource:
//
//	config, err := conf.NewConfigSource("/tmp/inspector.toml").Read()
//
// # Load Order
//
//  1. Embedded defaults (default.toml)
//  2. Main config file: /etc/sysconfig-inspector/config.toml
//  3. Drop-in files: /etc/sysconfig-inspector/config.toml.d/*.toml, in
//     lexicographic order
//
// A missing file or drop-in directory is skipped. A file that exists but
// cannot be parsed is an error.
//
// # Internal Architecture
//
//   - configDTO: internal struct with pointer fields for TOML parsing.
//     Pointers distinguish "not set" (nil) from "set to zero value".
//
//   - Config: public struct with value fields. Its Update method applies
//     DTO values.
//
//   - ConfigSource: loads every layer and merges them.
package conf
