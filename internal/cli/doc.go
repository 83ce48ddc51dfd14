// Package cli defines the Cobra command tree for the uikit CLI. Each file in
// this package registers one top-level command (add, remove, list, view,
// search, config, version) with the root command. Commands delegate to
// internal packages and only handle flags, output formatting and prompts.
package cli
