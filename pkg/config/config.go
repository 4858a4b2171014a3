package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Upstream endpoints of the MIET schedule service.
const (
	DefaultScheduleURL = "https://miet.ru/schedule/data"
	DefaultGroupsURL   = "https://miet.ru/schedule/groups"
	DefaultPageURL     = "https://miet.ru/schedule"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Config holds all runtime settings. Every field has a default, so an empty
// environment yields a working configuration.
type Config struct {
	ScheduleURL string
	GroupsURL   string
	PageURL     string

	CacheTTL       time.Duration
	MaxConcurrency int
	Timeout        time.Duration

	ForceIPv4   bool
	InsecureTLS bool
	LocalAddr   string
	UserAgent   string

	GroupPrefixes []string
	GroupSuffixes []string
	GuessLimit    int

	GroupsFile string
	RoomsFile  string

	ListenAddr string
	PageSize   int
}

// Load reads the configuration from the environment, applying defaults for
// anything unset.
func Load() *Config {
	return &Config{
		ScheduleURL: getEnv("MIET_SCHEDULE_URL", DefaultScheduleURL),
		GroupsURL:   getEnv("MIET_GROUPS_URL", DefaultGroupsURL),
		PageURL:     getEnv("MIET_PAGE_URL", DefaultPageURL),

		CacheTTL:       time.Duration(getEnvInt("MIET_CACHE_TTL", 120)) * time.Second,
		MaxConcurrency: getEnvInt("MIET_MAX_CONCURRENCY", 10),
		Timeout:        time.Duration(getEnvInt("MIET_TIMEOUT", 45)) * time.Second,

		ForceIPv4:   getEnvFlag("MIET_FORCE_IPV4", true),
		InsecureTLS: getEnvFlag("MIET_DISABLE_SSL_VERIFY", false),
		LocalAddr:   strings.TrimSpace(os.Getenv("MIET_LOCAL_ADDR")),
		UserAgent:   getEnv("MIET_USER_AGENT", defaultUserAgent),

		GroupPrefixes: splitList(getEnv("MIET_GROUP_PATTERNS", "ПМ,ИВТ,КТС,БИ,ИС,ИТ")),
		GroupSuffixes: splitListKeepEmpty(getEnv("MIET_GROUP_SUFFIXES", ",А,Б")),
		GuessLimit:    getEnvInt("MIET_GROUP_GUESS_LIMIT", 300),

		GroupsFile: getEnv("MIET_GROUPS_FILE", "groups.json"),
		RoomsFile:  getEnv("MIET_ROOMS_FILE", "rooms.json"),

		ListenAddr: getEnv("MIET_LISTEN_ADDR", ":8080"),
		PageSize:   getEnvInt("MIET_PAGE_SIZE", 40),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvFlag treats "0", "false" and "no" as false, anything else that is
// set as true.
func getEnvFlag(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "0", "false", "no":
		return false
	}
	return true
}

// splitList splits a comma-separated value, trimming and dropping empties.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// splitListKeepEmpty keeps empty elements: an empty group suffix is a valid
// candidate (e.g. "ПМ-21" with no trailing letter).
func splitListKeepEmpty(value string) []string {
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
