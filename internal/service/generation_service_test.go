package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/vidgen_server/internal/pkg/replicate"
	"github.com/qs3c/vidgen_server/internal/repository"
	"github.com/qs3c/vidgen_server/internal/testutil"
)

const placeholderURL = "https://example.com/placeholder.mp4"

type fakeGenerator struct {
	url       string
	err       error
	calls     int
	durations []int
}

func (g *fakeGenerator) Run(ctx context.Context, prompt string, duration int) (string, error) {
	g.calls++
	g.durations = append(g.durations, duration)
	if g.err != nil {
		return "", g.err
	}
	return g.url, nil
}

type fakeMirror struct {
	err error
}

func (m *fakeMirror) MirrorVideo(ctx context.Context, sourceURL, email string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "https://cdn.example.com/videos/" + email + ".mp4", nil
}

func setupGenerationService(t *testing.T, gen VideoGenerator, mirror VideoMirror) (*GenerationService, repository.Store) {
	t.Helper()

	store := testutil.SetupFileStore(t)
	accounts := NewAccountService(store)
	accounts.now = func() time.Time { return testNow }
	service := NewGenerationService(store, NewPlanCatalog(nil), accounts, gen, mirror, placeholderURL)
	return service, store
}

func TestGenerationService_Generate_Success(t *testing.T) {
	gen := &fakeGenerator{url: "https://replicate.delivery/out.mp4"}
	service, store := setupGenerationService(t, gen, nil)
	testutil.TestUser(t, store,
		testutil.WithEmail("a@example.com"),
		testutil.WithPlan("pro", 15, testNow),
	)

	result, user, err := service.Generate(context.Background(), "a@example.com", "a cat surfing")
	require.NoError(t, err)
	assert.Equal(t, 14, user.VideosLeft)
	assert.Equal(t, "https://replicate.delivery/out.mp4", result.VideoURL)
	assert.False(t, result.Fallback)
	assert.Equal(t, 14, result.VideosLeft)
	assert.Equal(t, 15, result.PlanTotal)
	assert.Equal(t, []int{10}, gen.durations)

	stored, err := store.GetUser("a@example.com")
	require.NoError(t, err)
	assert.Equal(t, 14, stored.VideosLeft)
}

func TestGenerationService_Generate_FallbackStillConsumes(t *testing.T) {
	gen := &fakeGenerator{err: replicate.ErrNotConfigured}
	service, store := setupGenerationService(t, gen, &fakeMirror{})
	testutil.TestUser(t, store,
		testutil.WithEmail("a@example.com"),
		testutil.WithPlan("basic", 5, testNow),
	)

	result, _, err := service.Generate(context.Background(), "a@example.com", "prompt")
	require.NoError(t, err)
	assert.Equal(t, placeholderURL, result.VideoURL)
	assert.True(t, result.Fallback)
	assert.Equal(t, 4, result.VideosLeft)
	assert.Equal(t, []int{6}, gen.durations)
}

func TestGenerationService_Generate_LastCredit(t *testing.T) {
	gen := &fakeGenerator{url: "https://replicate.delivery/out.mp4"}
	service, store := setupGenerationService(t, gen, nil)
	testutil.TestUser(t, store,
		testutil.WithEmail("a@example.com"),
		testutil.WithPlan("basic", 1, testNow),
	)

	result, _, err := service.Generate(context.Background(), "a@example.com", "first")
	require.NoError(t, err)
	assert.Zero(t, result.VideosLeft)

	_, _, err = service.Generate(context.Background(), "a@example.com", "second")
	assert.ErrorIs(t, err, ErrUpgradeRequired)
	assert.Equal(t, 1, gen.calls)

	stored, err := store.GetUser("a@example.com")
	require.NoError(t, err)
	assert.Zero(t, stored.VideosLeft)
}

func TestGenerationService_Generate_Blocked(t *testing.T) {
	tests := []struct {
		name  string
		email string
		seed  bool
	}{
		{"unknown user", "ghost@example.com", false},
		{"unpaid user", "free@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{url: "https://replicate.delivery/out.mp4"}
			service, store := setupGenerationService(t, gen, nil)
			if tt.seed {
				testutil.TestUser(t, store, testutil.WithEmail(tt.email))
			}

			_, _, err := service.Generate(context.Background(), tt.email, "prompt")
			assert.ErrorIs(t, err, ErrUpgradeRequired)
			assert.Zero(t, gen.calls)
		})
	}
}

func TestGenerationService_Generate_ExpiredPlan(t *testing.T) {
	gen := &fakeGenerator{url: "https://replicate.delivery/out.mp4"}
	service, store := setupGenerationService(t, gen, nil)
	testutil.TestUser(t, store,
		testutil.WithEmail("a@example.com"),
		testutil.WithPlan("basic", 4, testNow.Add(-40*24*time.Hour)),
		testutil.WithCancelled(testNow.Add(-24*time.Hour)),
	)

	_, user, err := service.Generate(context.Background(), "a@example.com", "prompt")
	assert.ErrorIs(t, err, ErrUpgradeRequired)
	assert.Zero(t, gen.calls)
	require.NotNil(t, user)
	assert.False(t, user.HasPaid)

	stored, err := store.GetUser("a@example.com")
	require.NoError(t, err)
	assert.False(t, stored.HasPaid)
	assert.Zero(t, stored.VideosLeft)
}

func TestGenerationService_Authorize(t *testing.T) {
	service, store := setupGenerationService(t, &fakeGenerator{}, nil)
	testutil.TestUser(t, store, testutil.WithEmail("paid@example.com"), testutil.WithPlan("pro", 2, testNow))
	testutil.TestUser(t, store, testutil.WithEmail("free@example.com"))

	user, err := service.Authorize("paid@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, user.VideosLeft)

	user, err = service.Authorize("free@example.com")
	assert.ErrorIs(t, err, ErrUpgradeRequired)
	require.NotNil(t, user)
	assert.Equal(t, "free@example.com", user.Email)

	user, err = service.Authorize("ghost@example.com")
	assert.ErrorIs(t, err, ErrUpgradeRequired)
	assert.Nil(t, user)
}

func TestGenerationService_Generate_Mirror(t *testing.T) {
	tests := []struct {
		name    string
		mirror  *fakeMirror
		wantURL string
	}{
		{"mirrored", &fakeMirror{}, "https://cdn.example.com/videos/a@example.com.mp4"},
		{"mirror failure keeps provider url", &fakeMirror{err: errors.New("oss down")}, "https://replicate.delivery/out.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{url: "https://replicate.delivery/out.mp4"}
			service, store := setupGenerationService(t, gen, tt.mirror)
			testutil.TestUser(t, store,
				testutil.WithEmail("a@example.com"),
				testutil.WithPlan("elite", 40, testNow),
			)

			result, _, err := service.Generate(context.Background(), "a@example.com", "prompt")
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, result.VideoURL)
			assert.False(t, result.Fallback)
			assert.Equal(t, 39, result.VideosLeft)
		})
	}
}
