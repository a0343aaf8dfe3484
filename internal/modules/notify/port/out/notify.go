package out

import (
	"context"

	"cadence/internal/modules/notify/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	Notify(ctx context.Context, manifest domain.Manifest, digest domain.Digest) error
}

// DigestSource builds the digest for a calendar day. An empty today means
// the current day.
type DigestSource interface {
	Digest(ctx context.Context, today string) (domain.Digest, error)
}
