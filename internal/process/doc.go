// Package process handles OS process concerns: build commands run in their
// own process group so a timed-out build can be terminated together with
// every child it spawned, and CLIs stop on SIGINT or SIGTERM.
package process
