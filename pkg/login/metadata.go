package login

// PluginMetadata describes this authentication plugin to the gateway: display
// identity and login form field labels. Served by the /config endpoint as
// static metadata.
type PluginMetadata struct {
	// Key is the unique identifier of this plugin within the gateway
	Key string `json:"key"`

	// Name is the human readable plugin name shown on the login page
	Name string `json:"name"`

	// IconURL is the URL of the plugin icon, relative to the gateway
	IconURL string `json:"iconUrl"`

	// AuthenticationMethod is always "PASSWORD" for this plugin
	AuthenticationMethod string `json:"authenticationMethod"`

	LoginFormUsernameFieldLabel string `json:"loginFormUsernameFieldLabel,omitempty"`
	LoginFormPasswordFieldLabel string `json:"loginFormPasswordFieldLabel,omitempty"`
}

// DefaultPluginMetadata returns the metadata served when no overrides are
// configured.
func DefaultPluginMetadata() PluginMetadata {
	return PluginMetadata{
		Key:                         "internal",
		Name:                        "Local Account",
		IconURL:                     "/icon.svg",
		AuthenticationMethod:        "PASSWORD",
		LoginFormUsernameFieldLabel: "Email Address",
		LoginFormPasswordFieldLabel: "Password",
	}
}
