package config

import "strings"

// envReplacer maps nested keys to env names: registry.url → UIKIT_REGISTRY_URL.
var envReplacer = strings.NewReplacer(".", "_")
