package config

// StorageConfig defines configuration for the persisted URL state store.
// An empty SQLiteDBPath resolves to the platform data directory at store
// construction time.
type StorageConfig struct {
	SQLiteDBPath string `json:"sqlite_db_path,omitempty" yaml:"sqlite_db_path,omitempty"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		SQLiteDBPath: "",
	}
}
