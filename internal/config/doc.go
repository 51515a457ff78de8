// Package config loads the cluster bootstrap configuration shared by
// cmd/locality and cmd/directory: how many localities the run expects,
// where the directory service lives, and this process's own listen and
// public addresses.
//
// The file format is JSONC (JSON-with-comments, via
// github.com/tailscale/hujson) so a deployment's bootstrap file can
// carry inline notes about which address belongs to which host, the
// same role hujson plays in the retrieved calvinalkan-agent-task
// repo's own config loader. Precedence, low to highest: built-in
// defaults, config file, environment variables, explicit CLI flags —
// the same layering that repo's LoadConfig applies to its own settings,
// narrowed here to the handful of fields a fixed-N bootstrap needs.
package config
