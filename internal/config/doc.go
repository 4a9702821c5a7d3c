// Package config handles configuration loading for mission-control.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults: with no file at
// all the dashboard runs on localhost with the in-memory store.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${MISSION_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:3000"   # API listener
//
// Database:
//
//	database:
//	  driver: "sqlite"            # sqlite or memory
//	  path: "/var/lib/mission-control/mission.db"
//
// The memory driver backs the dashboard with the in-process fallback
// store; it needs no path and loses all data on restart. When a path
// is set and no driver is given, sqlite is assumed.
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${MISSION_JWT_SECRET}"
//	  api_key_hash: "$2a$10$..."  # bcrypt hash, see the token subcommand
//
// Model fallback chain:
//
//	llm:
//	  primary: "claude-opus-4-1"
//	  fallbacks: ["claude-sonnet-4-5", "claude-haiku-4-5"]
//	  agent_overrides:
//	    agent-002: "claude-haiku-4-5"
//	  max_retries: 2
//	  retry_delay: "1s"
//
// Seed data:
//
//	seed:
//	  fixtures_path: "./fixtures.toml"  # optional override of built-ins
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
//	cfg, err := config.Load("/etc/mission-control/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
