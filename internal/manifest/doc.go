// Package manifest defines the registry item model and handles parsing and
// schema validation of item documents. Remote registries serve JSON; local
// directory registries may also carry YAML, which is normalized to the same
// shape before validation.
package manifest
