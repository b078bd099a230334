package config

import (
	"os"
	"strconv"
	"time"
)

func getIntEnv(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	intValue, err := strconv.Atoi(value)
	if err != nil || intValue < 0 {
		return fallback
	}
	return intValue
}

func getFloatEnv(key string, fallback float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil || floatValue < 0 {
		return fallback
	}
	return floatValue
}

func getSecondsEnv(key string, fallbackSec int) time.Duration {
	return time.Duration(getIntEnv(key, fallbackSec)) * time.Second
}
