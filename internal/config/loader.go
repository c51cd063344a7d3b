package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
	SourceEnv     SourceKind = "env"
)

// Source records who last set a config key.
type Source struct {
	Kind   SourceKind
	Name   string // env variable or default set name
	File   string
	Line   int
	Column int
}

// sourceMap maps dotted key paths to the last writer.
type sourceMap map[string]Source

// file records every key written in doc.
func (m sourceMap) file(doc *yaml.Node, path string) {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	m.walk(doc, path, "")
}

func (m sourceMap) walk(node *yaml.Node, path, prefix string) {
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		if prefix != "" {
			key = prefix + "." + key
		}
		m[key] = Source{Kind: SourceFile, File: path, Line: val.Line, Column: val.Column}
		m.walk(val, path, key)
	}
}

func (m sourceMap) env(key, name string) {
	m[key] = Source{Kind: SourceEnv, Name: name}
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // key path -> last writer (file or env)
	Files   []string          // loaded files, in merge order
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "deskctl", "config.yaml"), nil
}

// LoadWithSources loads the config at DefaultConfigPath.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path (if it exists) and its includes, then applies
// DESKCTL_* environment overrides. A missing file yields the defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	l := &loader{sources: sourceMap{}}
	if _, err := os.Stat(path); err == nil {
		if err := l.load(path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := applyEnv(&l.raw, l.sources); err != nil {
		return nil, err
	}

	cfg := BuildEffectiveConfig(l.raw)
	if err := cfg.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			if src, ok := l.sources[verr.Path]; ok {
				verr.Source = src
			}
		}
		return nil, err
	}
	return &LoadResult{Config: cfg, Sources: l.sources, Files: l.files}, nil
}

// loader merges a file after its includes, so the including file wins.
type loader struct {
	raw     RawConfig
	sources sourceMap
	files   []string
	stack   []string
}

func (l *loader) load(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if slices.Contains(l.stack, abs) {
		return fmt.Errorf("include cycle detected: %s -> %s", strings.Join(l.stack, " -> "), abs)
	}
	l.stack = append(l.stack, abs)
	defer func() { l.stack = l.stack[:len(l.stack)-1] }()

	data, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("%s: failed to read: %w", abs, err)
	}
	var raw RawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: %w", abs, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%s: failed to parse yaml: %w", abs, err)
	}

	for _, inc := range raw.Include {
		paths, err := includePaths(abs, inc.Path)
		if err != nil {
			return fmt.Errorf("%s:%d:%d: include %q: %w", abs, inc.Line, inc.Column, inc.Path, err)
		}
		for _, p := range paths {
			if err := l.load(p); err != nil {
				return err
			}
		}
	}

	l.raw = l.raw.merge(raw)
	l.sources.file(&doc, abs)
	l.files = append(l.files, abs)
	return nil
}

// includePaths resolves an include relative to the file naming it.
func includePaths(from, include string) ([]string, error) {
	if include == "" {
		return nil, fmt.Errorf("path is empty")
	}
	path := expandHome(include)
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(from), path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		ext := strings.ToLower(filepath.Ext(ent.Name()))
		if !ent.IsDir() && (ext == ".yaml" || ext == ".yml") {
			files = append(files, filepath.Join(path, ent.Name()))
		}
	}
	return files, nil
}
