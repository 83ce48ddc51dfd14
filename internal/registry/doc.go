// Package registry fetches component items from remote and local registries
// and resolves their registry dependencies into a dependency-first install
// order. Fetches fan out concurrently per level; ordering is a sequential
// depth-first walk so the result is deterministic, and cycles are reported
// with their full path instead of being broken silently.
package registry
