package in_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notifyin "cadence/internal/modules/notify/adapter/in"
	"cadence/internal/modules/notify/dto"
	"cadence/internal/platform/logging"
)

type countingUsecase struct {
	sends int
}

func (c *countingUsecase) List(context.Context) ([]dto.NotifierInfo, error)   { return nil, nil }
func (c *countingUsecase) Doctor(context.Context) ([]dto.DoctorResult, error) { return nil, nil }
func (c *countingUsecase) Digest(context.Context, string) (dto.DigestOutput, error) {
	return dto.DigestOutput{}, nil
}

func (c *countingUsecase) Send(context.Context, dto.SendInput) (dto.SendOutput, error) {
	c.sends++
	return dto.SendOutput{Deliveries: []dto.DeliveryResult{{Notifier: "console", Delivered: true}}}, nil
}

func TestNewDaemonRejectsInvalidSchedule(t *testing.T) {
	t.Parallel()
	_, err := notifyin.NewDaemon(&countingUsecase{}, "every morning", logging.Nop())
	require.Error(t, err)

	_, err = notifyin.NewDaemon(&countingUsecase{}, "*/5 * * * * *", logging.Nop())
	require.Error(t, err)
}

func TestDaemonSendOnceAndStop(t *testing.T) {
	t.Parallel()
	uc := &countingUsecase{}
	daemon, err := notifyin.NewDaemon(uc, "0 8 * * *", logging.Nop())
	require.NoError(t, err)

	daemon.SendOnce(context.Background())
	assert.Equal(t, 1, uc.sends)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- daemon.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop")
	}
}
