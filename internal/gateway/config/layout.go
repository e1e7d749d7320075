package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"codecompass/internal/module"
	"codecompass/internal/urlstate"
)

// Layout tunes the page without code changes: module order, hidden
// modules, themes and the URL format.
type Layout struct {
	Modules      []ModuleLayout `mapstructure:"modules"`
	Themes       []string       `mapstructure:"themes"`
	DefaultTheme string         `mapstructure:"defaultTheme"`
	// URLFormat is "query" or "module".
	URLFormat    string `mapstructure:"urlFormat"`
	HistorySize  int    `mapstructure:"historySize"`
	DiagramCache int    `mapstructure:"diagramCache"`
}

// ModuleLayout overrides one registration. Module ids are case sensitive,
// so they are listed as values rather than map keys.
type ModuleLayout struct {
	ID       string `mapstructure:"id"`
	Priority *int   `mapstructure:"priority"`
	Disabled bool   `mapstructure:"disabled"`
}

func DefaultLayout() Layout {
	return Layout{
		Themes:       []string{"light", "dark"},
		DefaultTheme: "light",
		URLFormat:    "query",
	}
}

// LoadLayout reads path with viper. The format follows the extension
// (yaml, toml, json). An empty path yields the defaults.
func LoadLayout(path string) (Layout, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultLayout(), nil
	}

	v := viper.New()
	d := DefaultLayout()
	v.SetDefault("themes", d.Themes)
	v.SetDefault("defaultTheme", d.DefaultTheme)
	v.SetDefault("urlFormat", d.URLFormat)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Layout{}, fmt.Errorf("read layout %s: %w", path, err)
	}
	var l Layout
	if err := v.Unmarshal(&l); err != nil {
		return Layout{}, fmt.Errorf("parse layout %s: %w", path, err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, fmt.Errorf("layout %s: %w", path, err)
	}
	return l, nil
}

func (l Layout) Validate() error {
	switch strings.ToLower(strings.TrimSpace(l.URLFormat)) {
	case "", "query", "module":
	default:
		return fmt.Errorf("unknown urlFormat %q", l.URLFormat)
	}
	for i, m := range l.Modules {
		if strings.TrimSpace(m.ID) == "" {
			return fmt.Errorf("modules[%d]: id is required", i)
		}
	}
	if l.DefaultTheme != "" && len(l.Themes) > 0 && !contains(l.Themes, l.DefaultTheme) {
		return fmt.Errorf("default theme %q is not among themes", l.DefaultTheme)
	}
	return nil
}

func (l Layout) Overrides() module.Overrides {
	o := module.Overrides{Priorities: map[string]int{}}
	for _, m := range l.Modules {
		id := strings.TrimSpace(m.ID)
		if m.Disabled {
			o.DisabledIDs = append(o.DisabledIDs, id)
		}
		if m.Priority != nil {
			o.Priorities[id] = *m.Priority
		}
	}
	return o
}

func (l Layout) Codec() urlstate.Codec {
	if strings.EqualFold(strings.TrimSpace(l.URLFormat), "module") {
		return urlstate.ModuleCodec{}
	}
	return urlstate.QueryCodec{}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
