package device

// Transport tags for the two physically-mediated sync transports.
const (
	TransportWireless = "wireless"
	TransportVisual   = "visual"
)

// Config identifies this operator device and its sync preferences.
type Config struct {
	// ActorID is the stable identifier stamped on every count event this
	// device authors. If empty, a random ID is generated at startup.
	ActorID string `mapstructure:"actor_id" default:""`
	// DisplayName is the operator-facing device name used when joining a
	// counting session.
	DisplayName string `mapstructure:"display_name" default:""`
	// PreferredTransport selects the sync transport (wireless, visual).
	// Wireless is only used when the hardware probe succeeds; the visual
	// packet transport is the universal fallback.
	PreferredTransport string `mapstructure:"preferred_transport" default:"visual"`
}

// IsValidTransport checks if the configured transport tag is known.
func (c Config) IsValidTransport() bool {
	switch c.PreferredTransport {
	case TransportWireless, TransportVisual:
		return true
	default:
		return false
	}
}
