package utils

import "os"

type ServerConfig struct {
	Addr              string
	GoogleBooksAPIKey string
}

func LoadServerConfig() ServerConfig {
	addr := os.Getenv("BOOKVERSE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	return ServerConfig{
		Addr:              addr,
		GoogleBooksAPIKey: os.Getenv("GOOGLE_BOOKS_API_KEY"),
	}
}
