// Package about holds application identity and version information.
package about

// Info represents version information.
type Info struct {
	Version string `json:"version"`
	AppName string `json:"appName"`
	URL     string `json:"url"`
}

const AppName = "rosterline"
const Version = "0.1.0"
const URL = "https://github.com/rosterline/rosterline"

// Current returns the running build's identity.
func Current() Info {
	return Info{
		Version: Version,
		AppName: AppName,
		URL:     URL,
	}
}
