// Package profile models a build profile: where its manifest, scripts,
// envs, sources, and built stages live, and the operations the build
// pipeline runs against them.
//
// The directory layout is injected rather than hardcoded so tests can run
// against temp dirs:
//
//	<LibDir>/profiles/<name>/sources   the manifest
//	<LibDir>/profiles/<name>/scripts   numbered build scripts
//	<LibDir>/profiles/<name>/envs      environment files
//	<CacheDir>/profiles/<name>/sources downloaded sources
//	<CacheDir>/profiles/<name>/stages  built stage files
//	<RunDir>/<name>                    per-build scratch state
package profile
