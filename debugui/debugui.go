// Package debugui provides an immediate-mode Dear ImGui inspector for
// the engine runtime: frame timing, loop phase statistics, the active
// context and the contents of the resource cache.
package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/teamstor/team-stor-engine/assets"
	"github.com/teamstor/team-stor-engine/engine"
)

// Inspector renders the runtime windows. Create one per loop and call
// Render each frame between the backend's BeginFrame/EndFrame.
type Inspector struct {
	loop  *engine.Loop
	cache *assets.Cache

	historyFrames int
	frameHistory  []float32
	frameIndex    int
}

// NewInspector creates an inspector over the given loop and cache with
// a frame-time history of historyFrames samples. A non-positive history
// length is clamped to one sample.
func NewInspector(loop *engine.Loop, cache *assets.Cache, historyFrames int) *Inspector {
	if historyFrames < 1 {
		historyFrames = 1
	}
	return &Inspector{
		loop:          loop,
		cache:         cache,
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),
	}
}

// Render draws the inspector window.
func (in *Inspector) Render() {
	if !imgui.BeginV("Runtime Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := in.loop.Stats()

	in.frameHistory[in.frameIndex] = float32(stats.Delta) * 1000.0
	in.frameIndex = (in.frameIndex + 1) % in.historyFrames

	imgui.Text(fmt.Sprintf("Variable Ticks: %d", stats.VariableTicks))
	imgui.Text(fmt.Sprintf("Fixed Ticks: %d", stats.FixedTicks))
	imgui.Text(fmt.Sprintf("Total Time: %.1f s", stats.Total))
	imgui.Text(fmt.Sprintf("Fixed Step: %.4f s", in.loop.Clock().FixedStep()))

	var avgFrameTime float32
	for _, ft := range in.frameHistory {
		avgFrameTime += ft
	}
	avgFrameTime /= float32(in.historyFrames)

	if avgFrameTime > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avgFrameTime, 1000.0/avgFrameTime))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &in.frameHistory[0], int32(len(in.frameHistory)))

	in.renderContext()
	in.renderPhases(stats)
	in.renderCache()

	imgui.End()
}

func (in *Inspector) renderContext() {
	imgui.Separator()
	active := in.loop.Active()
	if active == nil {
		imgui.Text("Active Context: <none>")
		return
	}
	imgui.Text(fmt.Sprintf("Active Context: %s", contextName(active)))
	if in.loop.InFixedUpdate() {
		imgui.SameLine()
		imgui.Text("(fixed phase)")
	}
}

func (in *Inspector) renderPhases(stats engine.LoopStats) {
	if !imgui.TreeNodeStr("Phase Listeners") {
		return
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	for _, phase := range stats.Phases {
		if len(phase.Listeners) == 0 {
			continue
		}
		imgui.Text(phase.Phase)
		if imgui.BeginTableV("##"+phase.Phase, 3, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Listener")
			imgui.TableSetupColumn("Calls")
			imgui.TableSetupColumn("Avg")
			imgui.TableHeadersRow()

			for _, l := range phase.Listeners {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(l.Name)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", l.ExecutionCount))
				imgui.TableNextColumn()
				imgui.Text(l.AvgDuration.String())
			}

			imgui.EndTable()
		}
	}
	imgui.TreePop()
}

func (in *Inspector) renderCache() {
	if in.cache == nil {
		return
	}
	if !imgui.TreeNodeStr("Resource Cache") {
		return
	}

	imgui.Text(fmt.Sprintf("Root: %s", in.cache.Root()))
	imgui.Text(fmt.Sprintf("Entries: %d", in.cache.Len()))

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if imgui.BeginTableV("CacheTable", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Key")
		imgui.TableSetupColumn("Retained")
		imgui.TableHeadersRow()

		for _, key := range in.cache.Keys() {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			imgui.Text(key)
			imgui.TableNextColumn()
			if in.cache.IsRetained(key) {
				imgui.Text("yes")
			} else {
				imgui.Text("no")
			}
		}

		imgui.EndTable()
	}
	imgui.TreePop()
}

func contextName(ctx engine.Context) string {
	typ := reflect.TypeOf(ctx)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return typ.Name()
}
