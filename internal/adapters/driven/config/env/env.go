// Package env overlays environment variables and .env files on a config store.
package env

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/medichat/internal/core/ports/driven"
)

// Ensure Overlay implements the interface.
var _ driven.ConfigStore = (*Overlay)(nil)

type kind int

const (
	kindString kind = iota
	kindInt
	kindBool
)

// binding maps an environment variable onto a config key.
type binding struct {
	env  string
	key  string
	kind kind
}

// bindings are applied in order; later entries win for the same key.
var bindings = []binding{
	{"OPENAI_API_BASE", "completion.base_url", kindString},
	{"OPENAI_API_BASE", "embedding.base_url", kindString},
	{"OPENAI_API_KEY", "completion.api_key", kindString},
	{"OPENAI_API_KEY", "embedding.api_key", kindString},
	{"LLM_MODEL", "completion.model", kindString},
	{"OPENAI_EMBEDDING_BASE", "embedding.base_url", kindString},
	{"OPENAI_EMBEDDING_KEY", "embedding.api_key", kindString},
	{"EMBEDDING_MODEL", "embedding.model", kindString},
	{"MEDICHAT_STORE_BACKEND", "store.backend", kindString},
	{"AWS_S3_BUCKET", "store.bucket", kindString},
	{"AWS_REGION", "store.region", kindString},
	{"S3_ENDPOINT", "store.endpoint", kindString},
	{"S3_PATH_STYLE", "store.path_style", kindBool},
	{"MEDICHAT_INDEX_BACKEND", "index.backend", kindString},
	{"QDRANT_URL", "index.qdrant_url", kindString},
	{"QDRANT_API_KEY", "index.qdrant_api_key", kindString},
	{"EMAIL_SMTP_SERVER", "email.smtp_server", kindString},
	{"EMAIL_SMTP_PORT", "email.smtp_port", kindInt},
	{"EMAIL_SENDER", "email.sender", kindString},
	{"EMAIL_PASSWORD", "email.password", kindString},
	{"EMAIL_RECEIVER", "email.operator", kindString},
}

// Variables returns the names of every recognised environment variable, sorted.
func Variables() []string {
	seen := make(map[string]bool)
	var names []string
	for _, b := range bindings {
		if !seen[b.env] {
			seen[b.env] = true
			names = append(names, b.env)
		}
	}
	sort.Strings(names)
	return names
}

// Overlay is a driven.ConfigStore whose reads prefer environment values.
// Writes go to the underlying store; an overridden key keeps reading the
// environment value until the variable is unset.
type Overlay struct {
	base      driven.ConfigStore
	overrides map[string]any
}

// New reads the given .env files (missing files are skipped) and the
// process environment, which takes precedence over the files.
func New(base driven.ConfigStore, dotenvFiles ...string) (*Overlay, error) {
	vars := make(map[string]string)
	for _, path := range dotenvFiles {
		values, err := godotenv.Read(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for k, v := range values {
			vars[k] = v
		}
	}
	for _, name := range Variables() {
		if v, ok := os.LookupEnv(name); ok {
			vars[name] = v
		}
	}

	return NewFromMap(base, vars), nil
}

// NewFromMap builds an overlay from explicit variables.
// Values that do not parse as their key's type are ignored.
func NewFromMap(base driven.ConfigStore, vars map[string]string) *Overlay {
	overrides := make(map[string]any)
	for _, b := range bindings {
		raw, ok := vars[b.env]
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			continue
		}
		switch b.kind {
		case kindInt:
			if n, err := strconv.Atoi(raw); err == nil {
				overrides[b.key] = n
			}
		case kindBool:
			if v, err := strconv.ParseBool(raw); err == nil {
				overrides[b.key] = v
			}
		default:
			overrides[b.key] = raw
		}
	}
	return &Overlay{base: base, overrides: overrides}
}

// Overridden reports whether key is supplied by the environment.
func (o *Overlay) Overridden(key string) bool {
	_, ok := o.overrides[key]
	return ok
}

// Get retrieves a configuration value by key.
func (o *Overlay) Get(key string) (any, bool) {
	if v, ok := o.overrides[key]; ok {
		return v, true
	}
	return o.base.Get(key)
}

// GetString retrieves a string configuration value.
func (o *Overlay) GetString(key string) string {
	if v, ok := o.overrides[key].(string); ok {
		return v
	}
	return o.base.GetString(key)
}

// GetInt retrieves an integer configuration value.
func (o *Overlay) GetInt(key string) int {
	if v, ok := o.overrides[key].(int); ok {
		return v
	}
	return o.base.GetInt(key)
}

// GetFloat retrieves a floating point configuration value.
func (o *Overlay) GetFloat(key string) float64 {
	return o.base.GetFloat(key)
}

// GetBool retrieves a boolean configuration value.
func (o *Overlay) GetBool(key string) bool {
	if v, ok := o.overrides[key].(bool); ok {
		return v
	}
	return o.base.GetBool(key)
}

// Keys returns stored and overridden keys, sorted.
func (o *Overlay) Keys() []string {
	set := make(map[string]bool)
	for _, k := range o.base.Keys() {
		set[k] = true
	}
	for k := range o.overrides {
		set[k] = true
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set stores a value in the underlying store.
func (o *Overlay) Set(key string, value any) error {
	return o.base.Set(key, value)
}

// Save persists the underlying store.
func (o *Overlay) Save() error {
	return o.base.Save()
}

// Load reloads the underlying store. Environment values are fixed at construction.
func (o *Overlay) Load() error {
	return o.base.Load()
}

// Path returns the underlying configuration file path.
func (o *Overlay) Path() string {
	return o.base.Path()
}
