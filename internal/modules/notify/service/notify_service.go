package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"cadence/internal/modules/notify/domain"
	"cadence/internal/modules/notify/dto"
	notifyout "cadence/internal/modules/notify/port/out"
	"cadence/internal/platform/logging"
)

const defaultFanOut = 4

type NotifyService struct {
	store  notifyout.ManifestStore
	host   notifyout.Host
	source notifyout.DigestSource
	logger *slog.Logger
	fanOut int
}

func NewNotifyService(store notifyout.ManifestStore, host notifyout.Host, source notifyout.DigestSource, logger *slog.Logger) *NotifyService {
	return &NotifyService{
		store:  store,
		host:   host,
		source: source,
		logger: logging.Component(logger, "notify"),
		fanOut: defaultFanOut,
	}
}

func (s *NotifyService) List(ctx context.Context) ([]dto.NotifierInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NotifierInfo, 0, len(manifests))
	for _, m := range manifests {
		caps := make([]string, 0, len(m.Capabilities))
		for _, c := range m.Capabilities {
			caps = append(caps, string(c))
		}
		out = append(out, dto.NotifierInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary, Capabilities: caps})
	}
	return out, nil
}

func (s *NotifyService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		binaryOK := fileExists(m.Binary)
		result.BinaryReachable = binaryOK
		checksumOK := false
		if binaryOK {
			checksumOK = checksumMatches(m.Binary, m.SHA256) == nil
		}
		result.ChecksumValid = checksumOK
		if binaryOK && checksumOK && m.Enabled && s.host != nil {
			if err := s.host.CheckLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		if !binaryOK {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
		}
		if binaryOK && !checksumOK {
			result.Error = "checksum mismatch"
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *NotifyService) Digest(ctx context.Context, today string) (domain.Digest, error) {
	return s.source.Digest(ctx, today)
}

// Send delivers the digest for today to every enabled notifier at once.
// A failing notifier is reported in its delivery and does not stop the
// others. Nothing is sent on a day without due reviews unless force is set.
func (s *NotifyService) Send(ctx context.Context, today string, force bool) (domain.Digest, []domain.Delivery, bool, error) {
	digest, err := s.source.Digest(ctx, today)
	if err != nil {
		return domain.Digest{}, nil, false, err
	}
	if digest.Empty() && !force {
		return digest, nil, true, nil
	}
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return domain.Digest{}, nil, false, err
	}
	targets := make([]domain.Manifest, 0, len(manifests))
	for _, m := range manifests {
		if m.Enabled && m.HasCapability(domain.CapabilityNotify) {
			targets = append(targets, m)
		}
	}

	deliveries := make([]domain.Delivery, len(targets))
	var g errgroup.Group
	g.SetLimit(s.fanOut)
	for i, manifest := range targets {
		g.Go(func() error {
			delivery := domain.Delivery{Notifier: manifest.Name}
			if err := s.deliver(ctx, manifest, digest); err != nil {
				s.logger.Warn("digest delivery failed", "notifier", manifest.Name, "error", err)
				delivery.Error = err.Error()
			} else {
				delivery.Delivered = true
			}
			deliveries[i] = delivery
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Digest{}, nil, false, err
	}
	return digest, deliveries, false, nil
}

func (s *NotifyService) deliver(ctx context.Context, manifest domain.Manifest, digest domain.Digest) error {
	if err := checksumMatches(manifest.Binary, manifest.SHA256); err != nil {
		return err
	}
	if err := s.host.Notify(ctx, manifest, digest); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", domain.ErrPluginTimeout, manifest.Name)
		}
		return err
	}
	return nil
}

func (s *NotifyService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seenNames := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seenNames[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate notifier name: %s", manifest.Name)
		}
		seenNames[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

func checksumMatches(path string, expected string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("read notifier binary: %w", err)
	}
	defer f.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return fmt.Errorf("hash notifier binary: %w", err)
	}
	if hex.EncodeToString(hash.Sum(nil)) != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
