package logger

import "github.com/rs/zerolog"

// Component-specific logger functions

func component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

// DB returns a logger for database operations
func DB() zerolog.Logger {
	return component("db")
}

// ORM returns a logger for query and association operations
func ORM() zerolog.Logger {
	return component("orm")
}

// HTTP returns a logger for the HTTP transport
func HTTP() zerolog.Logger {
	return component("http")
}

// Auth returns a logger for sign-up and sign-in
func Auth() zerolog.Logger {
	return component("auth")
}

// Migration returns a logger for migration operations
func Migration() zerolog.Logger {
	return component("migration")
}

// CLI returns a logger for CLI operations
func CLI() zerolog.Logger {
	return component("cli")
}
