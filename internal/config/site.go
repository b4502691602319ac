package config

import "strings"

// SiteConfig holds request settings for one host.
type SiteConfig struct {
	// Cookie is sent as the Cookie header.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent with every request to the host.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the global User-Agent for the host.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// IsZero reports whether the SiteConfig sets nothing.
func (s SiteConfig) IsZero() bool {
	return s.Cookie == "" && len(s.Headers) == 0 && s.UserAgent == ""
}

// File represents the structure of the .sitegrep configuration file.
type File struct {
	// Sites maps host names (e.g. "example.com" or "example.com:8080") to
	// their settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to every host unless overridden in Sites.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the settings for host, merged over the defaults.
// Host lookup is case-insensitive; a host with a port falls back to the
// entry without the port.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	site, ok := cf.lookup(host)
	if !ok {
		return result
	}

	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if site.UserAgent != "" {
		result.UserAgent = site.UserAgent
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range site.Headers {
			result.Headers[k] = v
		}
	}

	return result
}

// lookup finds the site entry for host.
func (cf *File) lookup(host string) (SiteConfig, bool) {
	host = strings.ToLower(host)
	for name, site := range cf.Sites {
		if strings.ToLower(name) == host {
			return site, true
		}
	}

	if i := strings.LastIndex(host, ":"); i > 0 {
		bare := host[:i]
		for name, site := range cf.Sites {
			if strings.ToLower(name) == bare {
				return site, true
			}
		}
	}

	return SiteConfig{}, false
}
