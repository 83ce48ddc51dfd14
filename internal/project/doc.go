// Package project reads what the CLI needs to know about the target project:
// components.json, package.json, and tsconfig path mappings. Resolve
// combines them with the items being installed into a Seed, the immutable
// context every later phase works from.
package project
