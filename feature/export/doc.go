// Package export ships finished session totals to S3-compatible object
// storage. It is the only part of the system that touches the network
// beyond the device-to-device transports, and it is optional: a device
// without connectivity simply keeps its totals local.
package export
