// Package add runs the add command end to end.
//
// A run moves through fixed states:
//
//	idle → preflighting → resolving → transforming → writing → post-install → done
//
// and may drop to failed from any of them. Preflight loads package.json and
// components.json. Resolving fetches the dependency closure and computes
// the project seed; any error up to here leaves the disk untouched.
// Transforming rewrites every file in memory. Writing commits items one at a
// time in dependency order; an item that fails takes its dependents with
// it but not its siblings. Post-install adds npm packages, merges CSS
// variables into the Tailwind stylesheet and records the components in
// components.json.
package add
