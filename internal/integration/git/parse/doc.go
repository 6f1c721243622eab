// Package parse turns git and gh command output into typed records.
//
// Every parser is a pure function of its input text. Parsers skip lines
// they do not recognise rather than failing, tolerate trailing blank lines
// and CRLF line endings, and return an empty result for empty input.
// Calling a parser twice on the same input yields equal results.
//
// The expected invocation for each parser is documented on the function,
// for example Status expects `git status --porcelain=v1`.
package parse
