// Package common provides helpers shared by the tool packages: handler
// instrumentation, argument parsing and result construction.
package common
