// Package config loads runtime configuration for the session manager.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string       target service domain
//	-data string    userdata directory
//	-helper string  directory holding dialog helper executables
//	-t int          browser login timeout (seconds)
//
// # JSON schema
//
//	{
//	  "target_domain": "shippingmanager.cc",
//	  "cookie_name": "shipping_manager_session",
//	  "login_timeout_sec": 300
//	}
//
// Remote validation deliberately skips TLS certificate verification; see
// the api package. The endpoint itself is always derived from TargetDomain
// and never configured as a full URL.
package config
