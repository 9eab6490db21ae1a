package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// toMap renders the config as its JSON object form.
func (c *Config) toMap() (map[string]any, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	m := make(map[string]any)
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Keys lists the settable keys in dotted form, e.g. "controlnet.weight".
func (c *Config) Keys() []string {
	m, err := DefaultConfig().toMap()
	if err != nil {
		return nil
	}
	// Optional sections are omitted when empty.
	m["scratch_dir"] = ""
	m["openai"] = map[string]any{"api_key": "", "base_url": "", "model": ""}
	var keys []string
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			if sub, ok := v.(map[string]any); ok {
				walk(prefix+k+".", sub)
				continue
			}
			keys = append(keys, prefix+k)
		}
	}
	walk("", m)
	sort.Strings(keys)
	return keys
}

// Get returns the value of a dotted key.
func (c *Config) Get(key string) (any, error) {
	m, err := c.toMap()
	if err != nil {
		return nil, err
	}
	parts := strings.Split(key, ".")
	var cur any = m
	for _, p := range parts {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unknown setting %q", key)
		}
		if cur, ok = obj[p]; !ok {
			if c.known(key) {
				return "", nil
			}
			return nil, fmt.Errorf("unknown setting %q", key)
		}
	}
	return cur, nil
}

func (c *Config) known(key string) bool {
	for _, k := range c.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// Set assigns a dotted key. The value is parsed as JSON when possible
// (numbers, booleans) and taken as a plain string otherwise. The result is
// validated.
func (c *Config) Set(key, value string) error {
	if !c.known(key) {
		return fmt.Errorf("unknown setting %q", key)
	}
	m, err := c.toMap()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal([]byte(value), &v); err != nil {
		v = value
	}
	parts := strings.Split(key, ".")
	obj := m
	for _, p := range parts[:len(parts)-1] {
		sub, ok := obj[p].(map[string]any)
		if !ok {
			sub = make(map[string]any)
			obj[p] = sub
		}
		obj = sub
	}
	obj[parts[len(parts)-1]] = v

	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	next := DefaultConfig()
	if err := json.Unmarshal(data, next); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	_ = next.Validate()
	*c = *next
	return nil
}
