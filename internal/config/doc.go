// Package config loads and validates the TOML configuration shared by the
// framed daemons.
//
// Both processes read the same file so the filesystem contract between them
// (media directory, converted/ subdirectory, naming suffix) comes from a
// single source. Defaults favor a Raspberry Pi class appliance: two encoder
// cores, five second photo dwell, five minute catalog refresh.
//
// Paths are tilde-expanded and made absolute during Load; numeric knobs are
// range-checked so a typo fails fast at startup instead of misbehaving weeks
// into an unattended run.
package config
