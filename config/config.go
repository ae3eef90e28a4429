package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

//go:embed msr.toml
var defaultConfigData []byte

// Global state variables for the selected reader profile
var (
	ProfileName  string
	Coercivity   string // "hi" or "lo"
	BPI          [3]int // bits per inch per track
	BPC          [3]int // bits per character per track
	LeadingZero  [2]int // leading zero count for tracks 1&3, track 2
	WriteRetries int
)

// Config represents the entire TOML configuration structure
type Config struct {
	Default string    `toml:"default"`
	Profile []Profile `toml:"profile"`
}

// Profile represents one reader configuration
type Profile struct {
	Name        string `toml:"name"`
	Coercivity  string `toml:"coercivity"`
	BPI         []int  `toml:"bpi"`
	BPC         []int  `toml:"bpc"`
	LeadingZero []int  `toml:"leadingzero"`
	Retries     int    `toml:"retries"`
}

// configPath determines the config file path based on the operating system
func configPath() (string, error) {
	var configDir string
	var err error

	switch runtime.GOOS {
	case "windows":
		// Use AppData directory for Windows
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "msr")
	default:
		// Linux/macOS: use home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine user home directory: %w", err)
		}
	}

	return filepath.Join(configDir, ".msr"), nil
}

// Initialize loads and validates the configuration file.
// If the config file doesn't exist, it creates it from the embedded default.
func Initialize() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory %s: %w", dir, err)
		}
		if err := os.WriteFile(path, defaultConfigData, 0644); err != nil {
			return fmt.Errorf("failed to create default config file at %s: %w", path, err)
		}
	}

	return loadFile(path)
}

// loadFile parses and validates one config file and stores the selected
// profile in the package globals.
func loadFile(path string) error {
	var conf Config
	if _, err := toml.DecodeFile(path, &conf); err != nil {
		return fmt.Errorf("failed to parse TOML config at %s: %w", path, err)
	}

	if conf.Default == "" {
		return errors.New("`default` key is missing or empty in config")
	}

	var found *Profile
	for i := range conf.Profile {
		if conf.Profile[i].Name == conf.Default {
			found = &conf.Profile[i]
			break
		}
	}
	if found == nil {
		return fmt.Errorf("default profile %q not found in profile array", conf.Default)
	}

	if found.Coercivity != "hi" && found.Coercivity != "lo" {
		return fmt.Errorf("profile %q has invalid coercivity %q (must be \"hi\" or \"lo\")",
			found.Name, found.Coercivity)
	}
	if len(found.BPI) != 3 {
		return fmt.Errorf("profile %q must list 3 bpi values, got %d", found.Name, len(found.BPI))
	}
	for i, v := range found.BPI {
		if v != 75 && v != 210 {
			return fmt.Errorf("profile %q track %d has invalid bpi %d (must be 75 or 210)",
				found.Name, i+1, v)
		}
	}
	if len(found.BPC) != 3 {
		return fmt.Errorf("profile %q must list 3 bpc values, got %d", found.Name, len(found.BPC))
	}
	for i, v := range found.BPC {
		if v < 5 || v > 8 {
			return fmt.Errorf("profile %q track %d has invalid bpc %d (must be 5-8)",
				found.Name, i+1, v)
		}
	}
	if len(found.LeadingZero) != 2 {
		return fmt.Errorf("profile %q must list 2 leadingzero values, got %d",
			found.Name, len(found.LeadingZero))
	}
	for i, v := range found.LeadingZero {
		if v < 0 || v > 255 {
			return fmt.Errorf("profile %q has invalid leadingzero %d at index %d",
				found.Name, v, i)
		}
	}
	if found.Retries < 1 {
		return fmt.Errorf("profile %q has invalid retries: %d (must be positive)",
			found.Name, found.Retries)
	}

	ProfileName = found.Name
	Coercivity = found.Coercivity
	copy(BPI[:], found.BPI)
	copy(BPC[:], found.BPC)
	copy(LeadingZero[:], found.LeadingZero)
	WriteRetries = found.Retries

	return nil
}
