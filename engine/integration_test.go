package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamstor/team-stor-engine/assets"
	"github.com/teamstor/team-stor-engine/input"
)

type blob struct {
	data string
}

type blobLoader struct{}

func (blobLoader) Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &blob{data: string(data)}, nil
}

func (blobLoader) Release(any) {}

// assetContext loads a background asset on enter, as application
// contexts typically do.
type assetContext struct {
	ContextState

	cache  *assets.Cache
	key    string
	retain bool
	loaded *blob
}

func (c *assetContext) Enter(prev Context) {
	opts := []assets.Option{}
	if c.retain {
		opts = append(opts, assets.Retain())
	}
	c.loaded = assets.Get[*blob](c.cache, c.key, opts...)
}

func (c *assetContext) Leave(next Context)                 {}
func (c *assetContext) Update(dt, total float64, t uint64) {}
func (c *assetContext) FixedUpdate(tick uint64)            {}
func (c *assetContext) Draw(screen *ebiten.Image)          {}

// emptyContext does nothing at all.
type emptyContext struct {
	ContextState
}

func (c *emptyContext) Leave(next Context)                 {}
func (c *emptyContext) Enter(prev Context)                 {}
func (c *emptyContext) Update(dt, total float64, t uint64) {}
func (c *emptyContext) FixedUpdate(tick uint64)            {}
func (c *emptyContext) Draw(screen *ebiten.Image)          {}

func newSweepFixture(t *testing.T) (*Loop, *assets.Cache, string) {
	t.Helper()

	root := t.TempDir()
	registry := assets.NewRegistry()
	assets.RegisterLoader[*blob](registry, blobLoader{})
	cache := assets.NewCache(root, registry)

	loop, err := NewLoop(DefaultConfig(), input.NewStore(stubDevices{}))
	require.NoError(t, err)
	loop.OnTransition(func(old, new Context) {
		cache.SweepTransition(old, new)
	})

	return loop, cache, root
}

func TestSweepEndToEnd(t *testing.T) {
	loop, cache, root := newSweepFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "bg.png"), []byte("pixels"), 0o644))

	a := &assetContext{cache: cache, key: "bg.png"}
	b := &emptyContext{}

	// Entering A loads the asset; the initial transition must not sweep.
	loop.SetContext(a)
	require.NotNil(t, a.loaded)
	first := a.loaded
	assert.True(t, cache.Has("bg.png"))

	// Transitioning away evicts the non-retained entry.
	loop.SetContext(b)
	assert.False(t, cache.Has("bg.png"))

	// Coming back reloads it fresh.
	loop.SetContext(a)
	assert.True(t, cache.Has("bg.png"))
	assert.NotSame(t, first, a.loaded)
}

func TestRetainedAssetSurvivesTransitions(t *testing.T) {
	loop, cache, root := newSweepFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "ui.png"), []byte("pixels"), 0o644))

	a := &assetContext{cache: cache, key: "ui.png", retain: true}
	b := &emptyContext{}

	loop.SetContext(a)
	first := a.loaded

	loop.SetContext(b)
	assert.True(t, cache.Has("ui.png"))

	loop.SetContext(a)
	assert.Same(t, first, a.loaded)
}

func TestIntroSkipsToNextOnAcknowledge(t *testing.T) {
	devices := &pressOnDemand{}
	store := input.NewStore(devices)

	loop, err := NewLoop(DefaultConfig(), store)
	require.NoError(t, err)

	now := &fakeNow{t: time.Unix(1000, 0)}
	loop.now = now.get

	menu := &emptyContext{}
	intro := NewIntro(menu, nil)
	loop.SetContext(intro)

	require.NoError(t, loop.Update())
	assert.Same(t, Context(intro), loop.Active())

	devices.press = true
	now.advance(16 * time.Millisecond)
	require.NoError(t, loop.Update())

	assert.Same(t, Context(menu), loop.Active())
}

func TestIntroFinishesOnItsOwn(t *testing.T) {
	store := input.NewStore(stubDevices{})
	loop, err := NewLoop(DefaultConfig(), store)
	require.NoError(t, err)

	now := &fakeNow{t: time.Unix(1000, 0)}
	loop.now = now.get

	menu := &emptyContext{}
	intro := NewIntro(menu, nil)
	loop.SetContext(intro)

	// Run well past the hold and fade stages.
	for i := 0; i < 300; i++ {
		now.advance(16 * time.Millisecond)
		require.NoError(t, loop.Update())
		if loop.Active() == Context(menu) {
			return
		}
	}
	t.Fatal("intro never handed control to the next context")
}

// pressOnDemand reports the space key held whenever press is set.
type pressOnDemand struct {
	press bool
}

func (d *pressOnDemand) Poll() input.Snapshot {
	if d.press {
		return input.NewSnapshot([]ebiten.Key{ebiten.KeySpace})
	}
	return input.Snapshot{}
}
