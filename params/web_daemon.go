package params

import "time"

type ListenerConfig struct {
	// Network is the network to listen on.
	// The network must be "tcp", "tcp4", "tcp6", "unix" or "unixpacket".
	Network string `mapstructure:"network"`
	// Address is the address to listen on.
	Address string `mapstructure:"address"`
}

type WebDaemonConfig struct {
	ListenerConfig `mapstructure:",squash"`

	// Simplify is the configuration every request is simplified with.
	Simplify *SimplifyConfig `mapstructure:"simplify"`

	// CacheTTL bounds how long a simplified response is reused
	// for a byte-identical request body. Zero disables the cache.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// MaxBodyBytes limits request bodies.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`

	// Token, when set, is required of POST requests as a bearer token
	// or an api_token query parameter.
	Token string `mapstructure:"token" json:"-"`
}

func DefaultWebListenerConfig() ListenerConfig {
	return ListenerConfig{
		Network: "tcp",
		Address: "localhost:3000",
	}
}

func DefaultWebDaemonConfig() *WebDaemonConfig {
	return &WebDaemonConfig{
		ListenerConfig: DefaultWebListenerConfig(),
		Simplify:       DefaultSimplifyConfig.Copy(),
		CacheTTL:       10 * time.Minute,
		MaxBodyBytes:   64 << 20,
	}
}

func DefaultTestWebDaemonConfig() *WebDaemonConfig {
	d := DefaultWebDaemonConfig()
	d.Address = "localhost:3333"
	return d
}
