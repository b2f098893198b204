package service_test

import (
	"testing"

	"github.com/dom/game-review-catalog/internal/refresh"
	"github.com/dom/game-review-catalog/internal/service"
	"github.com/dom/game-review-catalog/internal/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type fixture struct {
	backend  *testutil.Backend
	services *service.Services
	signal   *refresh.Signal
	logs     *test.Hook
	// refreshes counts refresh signal triggers.
	refreshes int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f := &fixture{
		backend: testutil.NewBackend(),
		signal:  refresh.NewSignal(),
		logs:    hook,
	}
	f.services = service.NewServices(f.backend.Repositories(), service.Buckets{
		Covers:      "covers",
		Screenshots: "screenshots",
	}, f.signal, logger)

	unsubscribe := f.signal.Subscribe(func() { f.refreshes++ })
	t.Cleanup(unsubscribe)
	return f
}

func pngUpload(name string) *service.Upload {
	return &service.Upload{
		Filename:    name,
		ContentType: "image/png",
		Data:        testutil.PNGReader(),
	}
}
