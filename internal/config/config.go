// Package config loads per-directory course configuration and process settings.
//
// Directory configuration lives in a config.yaml file inside any content
// directory. It is resolved at two distinct moments during a build: while
// walking the tree the nearest directory config replaces the inherited one
// (Traversal), and when rendering, the nearest directory config is applied on
// top of a copy of the global config (Merge).
package config

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/courseforge/internal/logfields"
)

// FileName is the name of the directory-local configuration file.
const FileName = "config.yaml"

// Recognised configuration keys.
const (
	KeyName            = "name"
	KeyHidden          = "hidden"
	KeySource          = "source"
	KeyParts           = "parts"
	KeyGroups          = "groups"
	KeyAppendicesTitle = "appendices_title"
	KeyModulesTitle    = "modules_title"
	KeyYear            = "year"
	KeyAuthor          = "author"
	KeySiteName        = "site_name"
	KeyCoursesTitle    = "courses_title"
)

// DirConfig is a decoded config.yaml. Values keep their YAML types.
type DirConfig map[string]any

// Group is one titled part of a course table of contents.
type Group struct {
	Title string
	Items []string
}

// Defaults returns the global configuration used when the content root has no config.yaml.
func Defaults() DirConfig {
	return DirConfig{
		KeySiteName:     "Course Forge",
		KeyCoursesTitle: "Disciplinas",
	}
}

// LoadDir reads the config.yaml inside dir. found reports whether the file exists.
// A file that cannot be read or parsed yields an empty config and a warning; it
// never aborts the build.
func LoadDir(dir string) (cfg DirConfig, found bool) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Unreadable directory config, using empty config", logfields.Path(path), logfields.Error(err))
			return DirConfig{}, true
		}
		return nil, false
	}
	cfg, err = Parse(data)
	if err != nil {
		slog.Warn("Malformed directory config, using empty config", logfields.Path(path), logfields.Error(err))
		return DirConfig{}, true
	}
	return cfg, true
}

// Parse decodes YAML config data after expanding environment variables.
func Parse(data []byte) (DirConfig, error) {
	expanded := os.ExpandEnv(string(data))
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if raw == nil {
		return DirConfig{}, nil
	}
	return DirConfig(raw), nil
}

// LoadGlobal returns the defaults overlaid with the content root's config.yaml.
func LoadGlobal(root string) DirConfig {
	global := Defaults()
	if local, found := LoadDir(root); found {
		maps.Copy(global, local)
	}
	return global
}

// Traversal returns the config context a directory passes to its descendants:
// its own config when it has one, otherwise the inherited context unchanged.
func Traversal(inherited DirConfig, dir string) DirConfig {
	if local, found := LoadDir(dir); found {
		return local
	}
	return inherited
}

// Merge returns a copy of global with the keys of local applied on top.
// Neither argument is modified.
func Merge(global, local DirConfig) DirConfig {
	merged := make(DirConfig, len(global)+len(local))
	maps.Copy(merged, global)
	maps.Copy(merged, local)
	return merged
}

// Clone returns a shallow copy of the config.
func (c DirConfig) Clone() DirConfig {
	return Merge(c, nil)
}

// String returns the value for key formatted as a string, or "" when absent.
func (c DirConfig) String(key string) string {
	v, ok := c[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(v)
}

// Bool interprets the value for key as a boolean. Strings such as "true",
// "yes" and "1" count as true.
func (c DirConfig) Bool(key string) bool {
	switch v := c[key].(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "on", "y":
			return true
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	default:
		return false
	}
}

// Source returns the declared discovery redirect, or "".
func (c DirConfig) Source() string {
	return c.String(KeySource)
}

// Hidden reports whether the directory is excluded from course listings.
func (c DirConfig) Hidden() bool {
	return c.Bool(KeyHidden)
}

// AppendicesTitle returns the heading for entries not covered by any group.
func (c DirConfig) AppendicesTitle() string {
	if t := c.String(KeyAppendicesTitle); t != "" {
		return t
	}
	return c.String(KeyModulesTitle)
}

// Groups decodes the "parts" list, falling back to "groups". Each entry needs
// a title (or name) and a list of item names; malformed entries are skipped.
func (c DirConfig) Groups() []Group {
	raw, ok := c[KeyParts].([]any)
	if !ok {
		raw, ok = c[KeyGroups].([]any)
		if !ok {
			return nil
		}
	}
	groups := make([]Group, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		part := DirConfig(m)
		g := Group{Title: part.String("title")}
		if g.Title == "" {
			g.Title = part.String(KeyName)
		}
		items, _ := m["items"].([]any)
		for _, item := range items {
			if item == nil {
				continue
			}
			g.Items = append(g.Items, strings.TrimSpace(fmt.Sprint(item)))
		}
		groups = append(groups, g)
	}
	return groups
}
