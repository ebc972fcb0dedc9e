package constants

import "os"

func GetOutputDir() string {
	path := os.Getenv("OUTPUT_PATH")
	if path != "" {
		return path
	}
	return "./out"
}

// the server listens here unless PORT is set
const DefaultAddr = ":8080"

func GetAddr() string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return DefaultAddr
}

// how long the listen command waits after the last key change before
// analyzing what is held
const ListenDebounceMillis = 50
