// Command cleanarchguard runs go-cleanarch over the modules tree and fails
// when a layer imports something further out than itself.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/roblaszczak/go-cleanarch/cleanarch"
	"gopkg.in/yaml.v3"
)

type config struct {
	Root              string   `yaml:"root"`
	IgnoreTests       bool     `yaml:"ignore_tests"`
	IgnorePackages    []string `yaml:"ignore_packages"`
	SharedModules     []string `yaml:"shared_modules"`
	AllowedViolations []string `yaml:"allow_violations"`
	Layers            layers   `yaml:"layers"`
}

// layers maps directory names to the four go-cleanarch rings, inner first.
type layers struct {
	Domain         []string `yaml:"domain"`
	Application    []string `yaml:"application"`
	Interfaces     []string `yaml:"interfaces"`
	Infrastructure []string `yaml:"infrastructure"`
}

var defaultLayers = layers{
	Domain:         []string{"domain"},
	Application:    []string{"services"},
	Interfaces:     []string{"presentation"},
	Infrastructure: []string{"infrastructure"},
}

func main() {
	configPath := flag.String("config", ".gocleanarch.yml", "path to the layer config")
	debug := flag.Bool("debug", false, "print go-cleanarch debug output")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("cleanarchguard: %v", err)
	}
	if *debug {
		cleanarch.Log.SetOutput(os.Stderr)
	}

	violations, err := check(cfg)
	if err != nil {
		log.Fatalf("cleanarchguard: %v", err)
	}
	for _, v := range violations {
		log.Println(v)
	}
	if len(violations) > 0 {
		log.Printf("cleanarchguard: %d violation(s)", len(violations))
		os.Exit(1)
	}
	log.Println("cleanarchguard: ok")
}

func check(cfg *config) ([]string, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	validator := cleanarch.NewValidator(cfg.Layers.aliases())
	_, errs, err := validator.Validate(root, cfg.IgnoreTests, cfg.IgnorePackages)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", root, err)
	}

	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return filterViolations(msgs, cfg), nil
}

func loadConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &config{Root: "modules", IgnoreTests: true, Layers: defaultLayers}, nil
		}
		return nil, err
	}

	cfg := &config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if strings.TrimSpace(cfg.Root) == "" {
		cfg.Root = "."
	}
	cfg.Layers = cfg.Layers.withDefaults()
	return cfg, nil
}

func (l layers) withDefaults() layers {
	if len(l.Domain) == 0 {
		l.Domain = defaultLayers.Domain
	}
	if len(l.Application) == 0 {
		l.Application = defaultLayers.Application
	}
	if len(l.Interfaces) == 0 {
		l.Interfaces = defaultLayers.Interfaces
	}
	if len(l.Infrastructure) == 0 {
		l.Infrastructure = defaultLayers.Infrastructure
	}
	return l
}

func (l layers) aliases() map[string]cleanarch.Layer {
	out := map[string]cleanarch.Layer{}
	add := func(names []string, layer cleanarch.Layer) {
		for _, name := range names {
			if name = strings.TrimSpace(name); name != "" {
				out[name] = layer
			}
		}
	}
	add(l.Domain, cleanarch.LayerDomain)
	add(l.Application, cleanarch.LayerApplication)
	add(l.Interfaces, cleanarch.LayerInterfaces)
	add(l.Infrastructure, cleanarch.LayerInfrastructure)
	return out
}

var crossModulePattern = regexp.MustCompile(`between ([\w-]+) and ([\w-]+) modules`)

// filterViolations drops cross-module findings that involve a shared module
// and anything matching an allow_violations substring.
func filterViolations(msgs []string, cfg *config) []string {
	shared := make(map[string]struct{}, len(cfg.SharedModules))
	for _, m := range cfg.SharedModules {
		if m = strings.TrimSpace(m); m != "" {
			shared[m] = struct{}{}
		}
	}

	var out []string
	for _, msg := range msgs {
		if crossesShared(msg, shared) || allowed(msg, cfg.AllowedViolations) {
			continue
		}
		out = append(out, msg)
	}
	return out
}

func crossesShared(msg string, shared map[string]struct{}) bool {
	m := crossModulePattern.FindStringSubmatch(msg)
	if len(m) != 3 {
		return false
	}
	_, a := shared[m[1]]
	_, b := shared[m[2]]
	return a || b
}

func allowed(msg string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
