package game

import (
	"sync"
	"time"

	"github.com/automancy/automancy/internal/hexcoord"
	"github.com/automancy/automancy/internal/tile"
)

// renderFanoutTimeout bounds how long GetAllRenderCommands waits for any
// single tile's CollectRenderCommands reply: a bounded concurrent RPC
// that returns once every addressed tile has replied or a timeout
// fires.
const renderFanoutTimeout = 200 * time.Millisecond

// getAllRenderCommands fans CollectRenderCommands out (concurrently)
// to every live tile within cullingBounds plus every tile that was in
// the previous culling window but has left it, and merges the results
// into two maps.
func (g *Game) getAllRenderCommands(cullingBounds hexcoord.TileBounds) RenderCommandsResult {
	loadingSet := make(map[hexcoord.TileCoord]struct{})
	for _, c := range cullingBounds.All() {
		loadingSet[c] = struct{}{}
	}

	var leaving []hexcoord.TileCoord
	for _, c := range g.prevCulling.All() {
		if _, stillIn := loadingSet[c]; !stillIn {
			leaving = append(leaving, c)
		}
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	loaded := make(map[hexcoord.TileCoord][]tile.RenderCommand)
	unloading := make(map[hexcoord.TileCoord][]tile.RenderCommand)

	for c := range loadingSet {
		entry, ok := g.current.tiles[c]
		if !ok {
			continue
		}
		wasLoaded := g.prevCulling.Contains(c)
		wg.Add(1)
		go func(c hexcoord.TileCoord, entry *TileEntry, loading bool) {
			defer wg.Done()
			cmds, ok := g.collectRenderCommands(entry, loading, false)
			if !ok {
				return
			}
			mu.Lock()
			loaded[c] = cmds
			mu.Unlock()
		}(c, entry, !wasLoaded)
	}

	for _, c := range leaving {
		entry, ok := g.current.tiles[c]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(c hexcoord.TileCoord, entry *TileEntry) {
			defer wg.Done()
			cmds, ok := g.collectRenderCommands(entry, false, true)
			if !ok {
				return
			}
			mu.Lock()
			unloading[c] = cmds
			mu.Unlock()
		}(c, entry)
	}

	wg.Wait()
	g.prevCulling = cullingBounds
	return RenderCommandsResult{Loaded: loaded, Unloading: unloading}
}

// collectRenderCommands sends a single CollectRenderCommandsMsg and
// waits up to renderFanoutTimeout for the reply.
func (g *Game) collectRenderCommands(entry *TileEntry, loading, unloading bool) ([]tile.RenderCommand, bool) {
	reply := make(chan []tile.RenderCommand, 1)
	entry.Handle.Send(tile.CollectRenderCommandsMsg{Loading: loading, Unloading: unloading, Reply: reply})
	select {
	case cmds := <-reply:
		return cmds, cmds != nil
	case <-time.After(renderFanoutTimeout):
		g.log.Warn("tile render collection timed out")
		return nil, false
	}
}
