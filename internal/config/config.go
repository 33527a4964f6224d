package config

// LoaderConfig is the root configuration for the database loader.
type LoaderConfig struct {
	Database DBConfig      `yaml:"database"`
	Loader   LoaderOptions `yaml:"loader"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// LoaderOptions holds batch insert settings.
type LoaderOptions struct {
	BatchSize int `yaml:"batch_size"`
}
