package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/carve-build/carve/internal/app"
	"github.com/carve-build/carve/internal/core/ports"
	"github.com/carve-build/carve/internal/core/ports/mocks"
)

type stubResolvers struct{ r ports.Resolver }

func (s stubResolvers) ForRoot(string) ports.Resolver { return s.r }

type stubEmitters struct{ e ports.Emitter }

func (s stubEmitters) ForDir(string) ports.Emitter { return s.e }

func newTestApp(t *testing.T) (*app.App, *mocks.MockConfigLoader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)

	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().SetJSON(gomock.Any()).AnyTimes()

	mockSpan := mocks.NewMockSpan(ctrl)
	mockSpan.EXPECT().End().AnyTimes()
	mockSpan.EXPECT().RecordError(gomock.Any()).AnyTimes()
	mockSpan.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	mockTracer := mocks.NewMockTracer(ctrl)
	mockTracer.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string) (context.Context, ports.Span) {
			return ctx, mockSpan
		},
	).AnyTimes()

	application := app.New(
		mockLoader,
		stubResolvers{mocks.NewMockResolver(ctrl)},
		stubEmitters{mocks.NewMockEmitter(ctrl)},
		mocks.NewMockWatcher(ctrl),
		mockLogger,
		mockTracer,
	)
	return application, mockLoader, mockLogger
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	application, _, mockLogger := newTestApp(t)

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{
			App:    application,
			Logger: mockLogger,
		}, func() {}, nil
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run returns 1 when the command execution fails.
func TestRun_ExecutionError(t *testing.T) {
	application, mockLoader, mockLogger := newTestApp(t)

	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()
	mockLoader.EXPECT().Load(".").Return(nil, errors.New("load failed"))

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{
			App:    application,
			Logger: mockLogger,
		}, func() {}, nil
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"plan"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
}
