package shopify

// Config holds the connection settings for one storefront.
// Each store has its own domain and access token; clients are constructed
// per store.
type Config struct {
	// Domain is the shop domain, e.g. my-store.myshopify.com.
	Domain string `mapstructure:"domain"`
	// Token is the admin API access token.
	Token string `mapstructure:"token"`
	// APIVersion selects the admin API version, e.g. 2024-10.
	APIVersion string `mapstructure:"api_version"`
	// TimeoutSeconds is the HTTP timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}
