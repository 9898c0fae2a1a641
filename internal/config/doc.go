// SPDX-License-Identifier: MPL-2.0

// Package config discovers and loads project configuration.
//
// spin reads .spin.toml, spin.toml and pyproject.toml from the project
// directory. A dotted key is looked up in each file in that order and the
// first file holding it wins, so .spin.toml can replace the whole
// [tool.spin] table of pyproject.toml without merging.
//
// Files are decoded with go-toml. Scalar settings are also exposed through a
// viper store with defaults applied. The [tool.spin] table is validated
// against config_schema.cue. Environment settings are parsed with
// caarlos0/env.
package config
