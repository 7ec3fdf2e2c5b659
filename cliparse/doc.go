// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first, if present.

# CLI Flags

	-p                Server port (default 3318)
	-d                Database URL
	-t                Database type: sqlite (default) or postgres
	--public-url      Base URL used when building share links
	--share-secret    Share token secret
	--session-secret  Session signing secret

# Environment Variables

Flags fall back to environment variables:

	PORT               → -p
	DATABASE_URL       → -d
	DATABASE_TYPE      → -t
	PUBLIC_BASE_URL    → --public-url
	SHARE_TOKEN_SECRET → --share-secret
	SESSION_SECRET     → --session-secret

CLI flags take precedence over environment variables. DATABASE_URL and
both secrets are required.
*/
package cliparse
