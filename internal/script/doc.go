// Package script runs a profile's numbered build scripts.
//
// Scripts run under bash --noprofile --norc with an environment assembled
// from the profile's envs/base.env file plus injected build variables
// (ENVS, SCRIPTS, SOURCES, JOBS, LFSTAGE_PROFILE, LFSTAGE_VERSION,
// LFSTAGE_TMP). The process environment is not inherited.
package script
