package config

// LoginConfig holds the redirect contract and plugin identity configuration
type LoginConfig struct {
	// ExternalURL is the external base URL of the gateway; redirect overrides
	// must resolve to this origin
	ExternalURL string `env:"EXTERNAL_URL" env-default:"http://localhost:6100"`

	// AuthPluginRedirectURL is the default completion target, resolved
	// relative to ExternalURL
	AuthPluginRedirectURL string `env:"AUTH_PLUGIN_REDIRECT_URL" env-default:"/sign-in-redirect"`

	PluginKey     string `env:"AUTH_PLUGIN_KEY" env-default:"internal"`
	PluginName    string `env:"AUTH_PLUGIN_NAME" env-default:"Local Account"`
	PluginIconURL string `env:"AUTH_PLUGIN_ICON_URL" env-default:"/icon.svg"`
}
