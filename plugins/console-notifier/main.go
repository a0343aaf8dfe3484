package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-plugin"

	notifyrpc "cadence/internal/modules/notify/adapter/out/rpc"
)

type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *notifyrpc.Empty) (*notifyrpc.Metadata, error) {
	return &notifyrpc.Metadata{
		Name:         "console",
		Version:      "1.0.0",
		Capabilities: []string{"notify"},
	}, nil
}

// Notify writes the digest to stderr, which go-plugin forwards to the
// host's log output.
func (s *server) Notify(_ context.Context, in *notifyrpc.NotifyRequest) (*notifyrpc.NotifyResponse, error) {
	fmt.Fprintf(os.Stderr, "[cadence] %s\n%s", in.Title, in.Body)
	return &notifyrpc.NotifyResponse{Delivered: true, Message: "printed"}, nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: notifyrpc.HandshakeConfig,
		Plugins:         notifyrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
