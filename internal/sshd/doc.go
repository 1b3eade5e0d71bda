// Package sshd parses sshd_config files into a structured Tree and compares
// two trees.
//
// # Parsing
//
// A Tree holds the global directives of a configuration and its Match blocks
// in file order:
//
//	tree := sshd.Parse(hostfile.NewReader(logger), "/etc/ssh/sshd_config")
//	port, _ := tree.Global.Get("Port")
//
// Within one scope (the global scope or a single Match block) the first
// definition of a directive wins and later duplicates are discarded, which is
// how sshd itself resolves them. Values are typed: integers, yes/no booleans,
// strings, and the flag value of a directive written without an argument.
//
// Include directives found in the global scope are expanded as globs, and
// every matched regular file is parsed recursively. Directives set before the
// Include line win over included ones, and among included files the first
// in lexicographic order wins. Match blocks of included files are appended
// where the Include line occurs. A file already being parsed further up the
// include chain is skipped, so cyclic includes terminate.
//
// Nothing in this package fails: missing and unreadable files contribute
// nothing and malformed lines are skipped, all reported through the logger.
//
// # Comparing
//
// Compare produces three trees: directives present in both with equal
// values, directives the target expects but the actual configuration lacks
// or sets differently, and directives only the actual configuration has or
// sets differently. Match blocks are compared per criterion. The Include
// directive is never compared.
package sshd
