package erp

// Config holds configuration for the ERP service-layer connection.
type Config struct {
	// BaseURL is the service-layer endpoint, e.g. https://erp:50000/b1s/v1.
	BaseURL string `mapstructure:"base_url" default:""`
	// Company is the company database to log into.
	Company string `mapstructure:"company" default:""`
	// User is the service-layer user.
	User string `mapstructure:"user" default:""`
	// Password is the service-layer password.
	Password string `mapstructure:"password" default:""`
	// BatchSize caps how many changed items one fetch returns.
	BatchSize int `mapstructure:"batch_size" default:"200"`
	// TimeoutSeconds is the HTTP timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
