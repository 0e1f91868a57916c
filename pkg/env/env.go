package env

import "os"

// Get reads an environment variable, falling back when it is unset or
// empty.
func Get(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
