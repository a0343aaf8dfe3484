package out

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	notifyrpc "cadence/internal/modules/notify/adapter/out/rpc"
	"cadence/internal/modules/notify/domain"
	notifyout "cadence/internal/modules/notify/port/out"
	"cadence/internal/platform/logging"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
)

// GRPCHost launches notifier binaries per call through go-plugin.
type GRPCHost struct {
	logger *slog.Logger
}

func NewGRPCHost(logger *slog.Logger) notifyout.Host {
	return &GRPCHost{logger: logging.Component(logger, "notify.host")}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	_, err := h.GetMetadata(ctx, manifest)
	return err
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer closeFn()

	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()

	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	capabilities := make([]domain.Capability, 0, len(meta.Capabilities))
	for _, capability := range meta.Capabilities {
		capabilities = append(capabilities, domain.Capability(capability))
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Capabilities: capabilities}, nil
}

func (h *GRPCHost) Notify(ctx context.Context, manifest domain.Manifest, digest domain.Digest) error {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return err
	}
	defer closeFn()

	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()

	response, err := client.Notify(callCtx, &notifyrpc.NotifyRequest{
		Date:     digest.Date,
		Title:    digest.Title(),
		Body:     digest.Body(),
		Overdue:  rpcItems(digest.Overdue),
		DueToday: rpcItems(digest.DueToday),
	})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w: %s", domain.ErrPluginTimeout, manifest.Name)
		}
		return fmt.Errorf("notify: %w", err)
	}
	if !response.Delivered {
		return fmt.Errorf("notifier %s declined: %s", manifest.Name, response.Message)
	}
	return nil
}

func (h *GRPCHost) connect(manifest domain.Manifest) (notifyrpc.NotifierClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  notifyrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          notifyrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:   manifest.Name,
			Output: hclog.DefaultOutput,
			Level:  hclog.Warn,
		}),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start notifier %s: %w", manifest.Name, err)
	}
	raw, err := rpcClient.Dispense(notifyrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense notifier %s: %w", manifest.Name, err)
	}
	typed, ok := raw.(notifyrpc.NotifierClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("notifier rpc client type mismatch")
	}
	h.logger.Debug("notifier connected", "notifier", manifest.Name)
	return typed, closeFn, nil
}

func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

func rpcItems(items []domain.DigestItem) []notifyrpc.DigestItem {
	out := make([]notifyrpc.DigestItem, 0, len(items))
	for _, item := range items {
		out = append(out, notifyrpc.DigestItem{
			ReviewID: item.ReviewID,
			Subject:  item.Subject,
			Topic:    item.Topic,
			DueAt:    item.DueAt,
			DaysLate: int32(item.DaysLate),
		})
	}
	return out
}
