package database

import (
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate_Valid(t *testing.T) {
	config := Config{
		Host:     "localhost",
		Port:     3306,
		Username: "student",
		Password: "secret",
		Database: "assignment1",
		Timeout:  30 * time.Second,
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Expected valid config, got error: %v", err)
	}
}

func TestConfig_Validate_MissingHost(t *testing.T) {
	config := Config{Port: 3306, Username: "student"}
	if err := config.Validate(); err == nil {
		t.Error("Expected error for missing host")
	}
}

func TestConfig_Validate_InvalidPort(t *testing.T) {
	config := Config{Host: "localhost", Port: 70000, Username: "student"}
	if err := config.Validate(); err == nil {
		t.Error("Expected error for invalid port")
	}
}

func TestConfig_Validate_MissingUsername(t *testing.T) {
	config := Config{Host: "localhost", Port: 3306}
	if err := config.Validate(); err == nil {
		t.Error("Expected error for missing username")
	}
}

func TestConfig_Validate_DefaultsTimeout(t *testing.T) {
	config := Config{Host: "localhost", Port: 3306, Username: "student"}
	if err := config.Validate(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if config.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %v", config.Timeout)
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	config := Config{}
	config.SetDefaults()
	if config.Port != 3306 {
		t.Errorf("Expected default port 3306, got %d", config.Port)
	}
	if config.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %v", config.Timeout)
	}
}

func TestConfig_DSN(t *testing.T) {
	config := Config{
		Host:     "db.example.com",
		Port:     3307,
		Username: "student",
		Password: "secret",
		Database: "assignment1",
		Timeout:  10 * time.Second,
	}

	dsn := config.DSN()
	if !strings.HasPrefix(dsn, "student:secret@tcp(db.example.com:3307)/assignment1") {
		t.Errorf("Unexpected DSN: %s", dsn)
	}
	if !strings.Contains(dsn, "timeout=10s") {
		t.Errorf("Expected DSN to carry timeout, got %s", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("Expected DSN to enable parseTime, got %s", dsn)
	}
}
