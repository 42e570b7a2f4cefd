// Package manifest parses profile sources manifests.
//
// A manifest is a plain-text, UTF-8 file with one entry per line:
//
//	https://example.org/pkgs/gcc-14.2.0.tar.xz
//	https://example.org/raw/6f2c1 -> gcc-fixes.patch  # renamed destination
//	# full-line comment
//
// Entries either name a destination explicitly with " -> " or derive it
// from the final path segment of the URL. Comment lines start with "# ",
// "; ", or "// "; inline comments start at the earliest of " #", " //",
// or " ;".
package manifest
