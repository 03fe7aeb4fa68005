// Package shipper contains the post-build shipping step and the Writer
// contract it depends on.
//
// The step makes exactly one write attempt per build completion, brackets it
// with two connection-health probes, reports transport problems on the build
// console, and reduces everything to a single boolean outcome consumed by the
// host. Nothing here retries, buffers, or touches the wire format; those
// concerns belong to the concrete Writer in the transport package.
package shipper
