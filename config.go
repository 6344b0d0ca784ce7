package session

// BaseConfig is a plain Config implementation for hosts that configure the
// session client from code or their own config loader.
type BaseConfig struct {
	BaseURL        string `json:"base_url"`
	RequestTimeout int    `json:"request_timeout"`
	LoginRoute     string `json:"login_route"`
	LandingRoute   string `json:"landing_route"`
	StoragePath    string `json:"storage_path"`
}

var _ Config = BaseConfig{}

// GetBaseURL returns the backend base URL, e.g. "https://api.planora.app".
func (c BaseConfig) GetBaseURL() string {
	return c.BaseURL
}

// GetRequestTimeout returns the outbound request timeout in seconds. Zero
// means the transport default.
func (c BaseConfig) GetRequestTimeout() int {
	return c.RequestTimeout
}

// GetLoginRoute returns the route navigated to after logout.
func (c BaseConfig) GetLoginRoute() string {
	if c.LoginRoute == "" {
		return "/login"
	}
	return c.LoginRoute
}

// GetLandingRoute returns the route navigated to after login/registration.
func (c BaseConfig) GetLandingRoute() string {
	if c.LandingRoute == "" {
		return "/dashboard"
	}
	return c.LandingRoute
}

// GetStoragePath returns the sqlite path for the durable credential store.
func (c BaseConfig) GetStoragePath() string {
	return c.StoragePath
}
