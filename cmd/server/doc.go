// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

/*
Package main is the entry point for the recipe web app server.

The server fetches recipes from TheMealDB, normalizes them into a stable
shape, remembers the last recipes a visitor opened in a cookie,
and keeps a favourites set per registered user.

# Application Architecture

Long-lived work runs under a Suture v4 supervisor tree:

	RootSupervisor ("recipe-web-app")
	├── DataSupervisor ("data-layer")
	│   └── store-gc (Badger value log GC)
	├── CacheSupervisor ("cache-layer")
	│   └── cache-janitor (expired recipe and listing entries)
	└── APISupervisor ("api-layer")
	    └── http-server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. User store: BadgerDB (on disk or in memory)
 4. TheMealDB client: rate limited, retrying, behind a gobreaker circuit breaker
 5. Catalog: normalizing service with TTL caches
 6. Authentication: bcrypt password hashing and HS256 JWT sessions
 7. Supervisor Tree and HTTP Server: Chi router with middleware stack

# Configuration

Every key can be set through the environment, for example:

	HTTP_PORT=3000
	MEALDB_BASE_URL=https://www.themealdb.com/api/json/v1/1
	STORAGE_PATH=/data/users
	JWT_SECRET=$(openssl rand -base64 32)
	LOG_LEVEL=debug

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests, the maintenance services stop, and the user store is closed.
*/
package main
