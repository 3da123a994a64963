package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	yaml "go.yaml.in/yaml/v3"

	"github.com/bft-labs/herald/internal/domain"
)

// DefaultProfileFile is the profile store used when none is configured.
const DefaultProfileFile = "bms.json"

// ProfileFile implements ports.ProfileRepository as a JSON or YAML document
// keyed by profile name. The format follows the file extension.
type ProfileFile struct {
	path string
	mu   sync.Mutex
}

// NewProfileFile creates a profile store for the given path.
func NewProfileFile(path string) *ProfileFile {
	return &ProfileFile{path: path}
}

// Load reads every profile. A missing file yields an empty map.
func (r *ProfileFile) Load(ctx context.Context) (map[string]domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *ProfileFile) load() (map[string]domain.Profile, error) {
	profiles := map[string]domain.Profile{}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return profiles, nil
		}
		return nil, err
	}

	if r.isYAML() {
		err = yaml.Unmarshal(data, &profiles)
	} else {
		err = json.Unmarshal(data, &profiles)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}
	if profiles == nil {
		profiles = map[string]domain.Profile{}
	}

	for name, p := range profiles {
		p.Name = name
		profiles[name] = p
	}
	return profiles, nil
}

// Get returns the named profile.
func (r *ProfileFile) Get(ctx context.Context, name string) (domain.Profile, error) {
	profiles, err := r.Load(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	p, ok := profiles[name]
	if !ok {
		return domain.Profile{}, fmt.Errorf("%w: %q", domain.ErrProfileNotFound, name)
	}
	return p, nil
}

// Put adds or replaces a profile and rewrites the file atomically.
func (r *ProfileFile) Put(ctx context.Context, profile domain.Profile) error {
	if strings.TrimSpace(profile.Name) == "" {
		return fmt.Errorf("%w: profile name is required", domain.ErrConfiguration)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	profiles, err := r.load()
	if err != nil {
		return err
	}
	profiles[profile.Name] = profile

	var data []byte
	if r.isYAML() {
		data, err = yaml.Marshal(profiles)
	} else {
		data, err = json.MarshalIndent(profiles, "", "    ")
	}
	if err != nil {
		return err
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

// Path returns the store path.
func (r *ProfileFile) Path() string {
	return r.path
}

func (r *ProfileFile) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(r.path))
	return ext == ".yaml" || ext == ".yml"
}
