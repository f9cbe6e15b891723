// Package sync implements the transport layer of the cooperative
// count protocol: the packet codec shared by both transports, the chunking
// scheme for the size-bounded wireless link, and the two SyncProvider
// implementations.
//
// # Encodings
//
// Both transports share one payload shape (Packet). The compact textual
// encoding is canonical JSON in the URL-safe, padding-free base64 alphabet,
// suitable for 2D barcodes and clipboards; session-join invitations carry
// the literal "coop-inv-join:" prefix. The wireless transport splits the
// same encoding into numbered 180-character chunks because its single-write
// payload is bounded; the Assembler reassembles them in any order.
//
// # Providers
//
// WirelessProvider needs a central-role BLE capability (injected as the
// Central interface) and only ever runs on a participant device.
// VisualProvider has no hardware dependency and is the guaranteed fallback.
// Expected failures never escape a provider as errors; they come back as
// Result{OK: false} with a human-readable message.
package sync
