package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	if trimmed == "" {
		return defaultEnv
	}
	return trimmed
}

func normalizeDriver(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "postgresql", "pg":
		return DriverPostgres
	case "sqlite", "sqlite3":
		return DriverSQLite
	case "mysql", "mariadb", "":
		return DriverMySQL
	default:
		return strings.ToLower(strings.TrimSpace(raw))
	}
}

func normalizeRuntimePaths(paths RuntimePathsConfig) RuntimePathsConfig {
	paths.Logs = strings.TrimSpace(paths.Logs)
	paths.Static = strings.TrimSpace(paths.Static)
	paths.Docs = strings.TrimSpace(paths.Docs)
	paths.Schemas = strings.TrimSpace(paths.Schemas)
	return paths
}

func normalizeS3(raw S3Options) S3Options {
	return S3Options{
		Endpoint:        strings.TrimRight(strings.TrimSpace(raw.Endpoint), "/"),
		Region:          strings.TrimSpace(raw.Region),
		Bucket:          strings.TrimSpace(raw.Bucket),
		AccessKeyID:     strings.TrimSpace(raw.AccessKeyID),
		SecretAccessKey: strings.TrimSpace(raw.SecretAccessKey),
		CustomDomain:    strings.TrimRight(strings.TrimSpace(raw.CustomDomain), "/"),
		PathStyleAccess: raw.PathStyleAccess,
		Prefix:          strings.Trim(strings.TrimSpace(raw.Prefix), "/"),
	}
}

func copyStringMap(input map[string]string) map[string]string {
	if input == nil {
		return nil
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}

func parseTimezoneLocation(raw string) (*time.Location, error) {
	tz := strings.TrimSpace(raw)
	if tz == "" {
		return time.UTC, nil
	}
	if loc, err := time.LoadLocation(tz); err == nil {
		return loc, nil
	}
	if len(tz) == 6 && (tz[0] == '+' || tz[0] == '-') && tz[3] == ':' {
		h, errH := strconv.Atoi(tz[1:3])
		m, errM := strconv.Atoi(tz[4:6])
		if errH == nil && errM == nil && h <= 23 && m <= 59 {
			offset := h*3600 + m*60
			if tz[0] == '-' {
				offset = -offset
			}
			return time.FixedZone(tz, offset), nil
		}
	}
	return nil, fmt.Errorf("expect IANA zone (e.g. America/New_York) or UTC offset (e.g. +02:00)")
}
