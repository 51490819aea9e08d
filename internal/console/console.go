// Package console is an interactive admin REPL for a running scheduler.
// Input is driven by an io.Reader with a Run/runScanner/runInteractive
// split: piped input falls back to line scanning, while a terminal gets
// go-prompt's completion and history. Commands are dispatched directly
// against game.Game's message set rather than through a separate
// command registry.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"github.com/automancy/automancy/internal/game"
	"github.com/automancy/automancy/internal/hexcoord"
	"github.com/automancy/automancy/internal/ids"
	"github.com/automancy/automancy/internal/resources"
)

const (
	defaultPromptPrefix = "> "
	maxHistoryEntries   = 128
)

// Console reads admin commands from an io.Reader (os.Stdin by default)
// and applies them to a running scheduler.
type Console struct {
	g             *game.Game
	registry      *resources.Registry
	log           *slog.Logger
	reader        io.Reader
	history       []string
	cullingRadius int32
}

// New returns a Console bound to g and registry, logging command output
// through log. cullingRadius is the default ring count "render" falls
// back to when no radius argument is given, normally engine.toml's
// culling_radius.
func New(g *game.Game, registry *resources.Registry, log *slog.Logger, cullingRadius int32) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{g: g, registry: registry, log: log, reader: os.Stdin, cullingRadius: cullingRadius}
}

// WithReader sets a custom input reader, so tests can drive the console
// without a terminal.
func (c *Console) WithReader(r io.Reader) *Console {
	if r != nil {
		c.reader = r
	}
	return c
}

// Run consumes commands until ctx is cancelled or the reader reaches EOF.
func (c *Console) Run(ctx context.Context) {
	if c.reader != os.Stdin {
		c.runScanner(ctx)
		return
	}
	c.runInteractive(ctx)
}

func (c *Console) runScanner(ctx context.Context) {
	scanner := bufio.NewScanner(c.reader)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				c.log.Error("console input error", "err", err)
			}
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.execute(line)
	}
}

func (c *Console) runInteractive(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		line := prompt.Input(defaultPromptPrefix, c.complete,
			prompt.OptionTitle("Automancy Console"),
			prompt.OptionHistory(c.history),
			prompt.OptionPrefix(defaultPromptPrefix),
			prompt.OptionCompletionOnDown(),
			prompt.OptionMaxSuggestion(12),
		)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c.execute(line)
	}
}

func (c *Console) execute(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	c.history = append(c.history, line)
	if len(c.history) > maxHistoryEntries {
		c.history = c.history[len(c.history)-maxHistoryEntries:]
	}

	name := strings.ToLower(fields[0])
	handler, ok := commands[name]
	if !ok {
		c.log.Error("unknown command", "command", name)
		return
	}
	if msg := handler(c, fields[1:]); msg != "" {
		c.log.Info(msg)
	}
}

type commandHandler func(c *Console, args []string) string

var commands = map[string]commandHandler{
	"help":   cmdHelp,
	"place":  cmdPlace,
	"remove": cmdRemove,
	"get":    cmdGet,
	"undo":   cmdUndo,
	"save":   cmdSave,
	"load":   cmdLoad,
	"render": cmdRender,
}

func cmdHelp(c *Console, args []string) string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return "commands: " + strings.Join(names, ", ")
}

func parseCoord(qs, rs string) (hexcoord.TileCoord, error) {
	q, err := strconv.Atoi(qs)
	if err != nil {
		return hexcoord.TileCoord{}, fmt.Errorf("bad q coordinate %q: %w", qs, err)
	}
	r, err := strconv.Atoi(rs)
	if err != nil {
		return hexcoord.TileCoord{}, fmt.Errorf("bad r coordinate %q: %w", rs, err)
	}
	return hexcoord.TileCoord{Q: int32(q), R: int32(r)}, nil
}

func cmdPlace(c *Console, args []string) string {
	if len(args) != 3 {
		return "usage: place <q> <r> <tile_id>"
	}
	coord, err := parseCoord(args[0], args[1])
	if err != nil {
		return err.Error()
	}
	tileID := ids.TileIdOf(c.registry.Interner.Intern(args[2]))
	reply := make(chan game.PlaceTileResponse, 1)
	c.g.Send(game.PlaceTileMsg{
		Coord:  coord,
		Tile:   game.PlacementTile{ID: tileID},
		Record: true,
		Reply:  reply,
	})
	return fmt.Sprintf("place %s at (%d,%d): %s", args[2], coord.Q, coord.R, <-reply)
}

func cmdRemove(c *Console, args []string) string {
	if len(args) != 2 {
		return "usage: remove <q> <r>"
	}
	coord, err := parseCoord(args[0], args[1])
	if err != nil {
		return err.Error()
	}
	reply := make(chan game.PlaceTileResponse, 1)
	c.g.Send(game.PlaceTileMsg{
		Coord:  coord,
		Tile:   game.PlacementTile{ID: c.registry.NoneTileID()},
		Record: true,
		Reply:  reply,
	})
	return fmt.Sprintf("remove (%d,%d): %s", coord.Q, coord.R, <-reply)
}

func cmdGet(c *Console, args []string) string {
	if len(args) != 2 {
		return "usage: get <q> <r>"
	}
	coord, err := parseCoord(args[0], args[1])
	if err != nil {
		return err.Error()
	}
	reply := make(chan game.FlatTileLookup, 1)
	c.g.Send(game.GetTileFlatMsg{Coord: coord, Reply: reply})
	lookup := <-reply
	if !lookup.Ok {
		return fmt.Sprintf("(%d,%d): empty", coord.Q, coord.R)
	}
	idStr, _ := c.registry.Interner.Lookup(lookup.Tile.ID.Id())
	return fmt.Sprintf("(%d,%d): %s (%d data fields)", coord.Q, coord.R, idStr, lookup.Tile.Data.Len())
}

func cmdUndo(c *Console, args []string) string {
	c.g.Send(game.UndoMsg{})
	return "undo requested"
}

func cmdSave(c *Console, args []string) string {
	c.g.Send(game.SaveMapMsg{})
	return "save requested"
}

func cmdLoad(c *Console, args []string) string {
	if len(args) != 1 {
		return "usage: load <save_name>"
	}
	reply := make(chan bool, 1)
	c.g.Send(game.LoadMapMsg{ID: game.SaveFile(args[0]), Reply: reply})
	if <-reply {
		return "loaded " + args[0]
	}
	return "load failed for " + args[0]
}

// cmdRender reports how many render commands a culling pass around
// (q, r) would emit, using the console's default culling radius unless
// an explicit radius is given: render <q> <r> [radius].
func cmdRender(c *Console, args []string) string {
	if len(args) != 2 && len(args) != 3 {
		return "usage: render <q> <r> [radius]"
	}
	coord, err := parseCoord(args[0], args[1])
	if err != nil {
		return err.Error()
	}
	radius := c.cullingRadius
	if len(args) == 3 {
		r, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Sprintf("bad radius %q: %v", args[2], err)
		}
		radius = int32(r)
	}
	reply := make(chan game.RenderCommandsResult, 1)
	c.g.Send(game.GetAllRenderCommandsMsg{CullingBounds: hexcoord.NewHex(coord, radius), Reply: reply})
	result := <-reply
	return fmt.Sprintf("render around (%d,%d) radius %d: %d loaded, %d unloading",
		coord.Q, coord.R, radius, len(result.Loaded), len(result.Unloading))
}

func (c *Console) complete(doc prompt.Document) []prompt.Suggest {
	word := strings.ToLower(strings.TrimSpace(doc.GetWordBeforeCursor()))
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	suggestions := make([]prompt.Suggest, 0, len(names))
	for _, name := range names {
		suggestions = append(suggestions, prompt.Suggest{Text: name})
	}
	return prompt.FilterHasPrefix(suggestions, word, true)
}
