// Package buildlog models the finished build whose console output is being
// shipped and captures its log lines on demand.
package buildlog
