package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// config.toml key mapping to mesher settings.
type fileConfig struct {
	Size      float64 `toml:"size"`
	Algorithm string  `toml:"algorithm"`
	Dimension int     `toml:"dimension"`
	Out       string  `toml:"out"`
}

type toolConfig struct {
	Size      float64
	Algorithm string
	Dimension int
	Out       string
}

func defaultToolConfig() toolConfig {
	return toolConfig{
		Size:      0, // auto: largest bounding box extent
		Algorithm: "frontal",
		Dimension: 2,
	}
}

// loadToolConfig overlays config.toml values onto the defaults. Keys absent
// from the file keep their default.
func loadToolConfig(path string) (toolConfig, error) {
	cfg := defaultToolConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return toolConfig{}, fmt.Errorf("load mesher config: %w", err)
	}

	if meta.IsDefined("size") {
		cfg.Size = raw.Size
	}
	if meta.IsDefined("algorithm") {
		cfg.Algorithm = strings.TrimSpace(raw.Algorithm)
	}
	if meta.IsDefined("dimension") {
		cfg.Dimension = raw.Dimension
	}
	if meta.IsDefined("out") {
		cfg.Out = strings.TrimSpace(raw.Out)
	}

	if err := validateToolConfig(cfg); err != nil {
		return toolConfig{}, err
	}
	return cfg, nil
}

func validateToolConfig(cfg toolConfig) error {
	if cfg.Size < 0 {
		return fmt.Errorf("mesher config: size must be positive or zero for auto, got %g", cfg.Size)
	}
	if cfg.Algorithm != "delaunay" && cfg.Algorithm != "frontal" {
		return fmt.Errorf("mesher config: unknown algorithm %q (expected delaunay or frontal)", cfg.Algorithm)
	}
	if cfg.Dimension != 2 && cfg.Dimension != 3 {
		return fmt.Errorf("mesher config: dimension must be 2 or 3, got %d", cfg.Dimension)
	}
	if cfg.Out != "" && !strings.HasSuffix(cfg.Out, ".msh") &&
		!strings.HasSuffix(cfg.Out, ".stl") && !strings.HasSuffix(cfg.Out, ".png") {
		return fmt.Errorf("mesher config: out %q must end in .msh, .stl or .png", cfg.Out)
	}
	return nil
}
