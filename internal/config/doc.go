// Package config manages user-level settings stored at ~/.uikit/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// the default registry URL, the registry request timeout, and the fetch
// concurrency limit. Every key can be overridden with a UIKIT_ environment
// variable.
package config
