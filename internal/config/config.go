package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the server needs from the environment. A .env
// file in the working directory is honored when present.
type Config struct {
	Addr         string
	RPCSocket    string
	DBPath       string
	ServingsCSV  string
	GramsCSV     string
	AccessSecret string
	Env          string
}

func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:         getEnv("FOODLOG_ADDR", ":8080"),
		RPCSocket:    getEnv("FOODLOG_RPC_SOCKET", "/tmp/foodlog.sock"),
		DBPath:       getEnv("FOODLOG_DB_PATH", "food_log.db"),
		ServingsCSV:  getEnv("FOODLOG_SERVINGS_CSV", "Indian_Food_Nutrition_Processed.csv"),
		GramsCSV:     getEnv("FOODLOG_GRAMS_CSV", "Indian_Food_Nutrition_Per100g.csv"),
		AccessSecret: os.Getenv("FOODLOG_ACCESS_SECRET"),
		Env:          getEnv("FOODLOG_ENV", "development"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
