// Package device holds the identity configuration of the local operator
// device: the actor id stamped on authored count events, the display name
// used when joining sessions, and the preferred sync transport.
package device
