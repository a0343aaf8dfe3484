package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"cadence/internal/modules/notify/domain"
	notifyout "cadence/internal/modules/notify/port/out"
)

// notifierFile is the documented manifest layout. A bare JSON array of
// notifiers is still read for files written before the document form.
type notifierFile struct {
	Notifiers []domain.Manifest `json:"notifiers" yaml:"notifiers"`
}

// FileManifestStore reads notifier manifests from a JSON or YAML file,
// chosen by extension. Relative binary paths resolve against the data
// directory and notifiers that list no capabilities are notify-only.
type FileManifestStore struct {
	basePath string
	path     string
}

func NewFileManifestStore(basePath, path string) notifyout.ManifestStore {
	return &FileManifestStore{basePath: basePath, path: path}
}

func (s *FileManifestStore) Load(_ context.Context) ([]domain.Manifest, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Manifest{}, nil
		}
		return nil, fmt.Errorf("read notifier manifests: %w", err)
	}
	notifiers, err := decodeNotifiers(s.path, raw)
	if err != nil {
		return nil, fmt.Errorf("decode notifier manifests %s: %w", filepath.Base(s.path), err)
	}

	seen := make(map[string]struct{}, len(notifiers))
	for i := range notifiers {
		n := &notifiers[i]
		key := strings.ToLower(strings.TrimSpace(n.Name))
		if _, dup := seen[key]; dup && key != "" {
			return nil, fmt.Errorf("notifier %q is listed twice", n.Name)
		}
		seen[key] = struct{}{}

		n.SHA256 = strings.ToLower(strings.TrimSpace(n.SHA256))
		if n.Binary != "" && !filepath.IsAbs(n.Binary) {
			n.Binary = filepath.Clean(filepath.Join(s.basePath, n.Binary))
		}
		if len(n.Capabilities) == 0 {
			n.Capabilities = []domain.Capability{domain.CapabilityNotify}
		}
	}
	return notifiers, nil
}

func decodeNotifiers(path string, raw []byte) ([]domain.Manifest, error) {
	var file notifierFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(raw))
		decoder.KnownFields(true)
		if err := decoder.Decode(&file); err != nil {
			return nil, err
		}
		return file.Notifiers, nil
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []domain.Manifest{}, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.DisallowUnknownFields()
	if trimmed[0] == '[' {
		var notifiers []domain.Manifest
		if err := decoder.Decode(&notifiers); err != nil {
			return nil, err
		}
		return notifiers, nil
	}
	if err := decoder.Decode(&file); err != nil {
		return nil, err
	}
	return file.Notifiers, nil
}
