package database

// Config holds configuration for the local database connection.
type Config struct {
	// Driver is the database driver (mysql, sqlite).
	// Handheld/single-device deployments use sqlite; a coordinating host
	// backed by a shared server uses mysql.
	Driver string `mapstructure:"driver" default:"sqlite"`
	// Host is the database host (mysql only).
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port (mysql only).
	Port int `mapstructure:"port" default:"3306"`
	// User is the database user (mysql only).
	User string `mapstructure:"user" default:"root"`
	// Password is the database password (mysql only).
	Password string `mapstructure:"password" default:""`
	// Name is the database name for mysql, or the file path for sqlite.
	// ":memory:" gives an ephemeral in-memory store.
	Name string `mapstructure:"name" default:"coop-inventory.db"`
	// TimeoutSeconds is the connection/IO timeout in seconds (mysql only).
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
