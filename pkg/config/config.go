package config

import "os"

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	FirebaseWebAPIKey       string
	MongoURI                string
	RedisAddr               string
	RedisDB                 string
	ORSBaseURL              string
	ORSAPIKey               string
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		FirebaseWebAPIKey:       getEnv("FIREBASE_WEB_API_KEY", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		RedisAddr:               getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:                 getEnv("REDIS_DB", "0"),
		ORSBaseURL:              getEnv("ORS_BASE_URL", "https://api.openrouteservice.org"),
		ORSAPIKey:               getEnv("ORS_API_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
