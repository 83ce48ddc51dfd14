// Package install puts transformed files on disk.
//
// ResolveTarget maps a registry file to its destination from the project
// aliases, an explicit target or a --path override. Writer commits one item
// at a time: unchanged files are left alone, differing files are skipped,
// overwritten or confirmed through a Prompter, and everything else is staged
// next to its destination and renamed into place so a failed item leaves
// the tree as it was.
//
// After all items are written, ManagerInstaller adds the npm packages they
// need and UpdateCSSVars merges their CSS variables into the Tailwind
// stylesheet.
package install
