package tile

import (
	"github.com/automancy/automancy/internal/data"
	"github.com/automancy/automancy/internal/hexcoord"
	"github.com/automancy/automancy/internal/ids"
)

// Scripts return their TileResult / TileTransactionResult / render
// command values as plain objects tagged with a "type" field naming the
// Rust-side enum variant they stand in for (e.g. {type: "MakeTransaction",
// ...}), since goja has no equivalent of rhai's Dynamic-wrapped Rust
// enum. These decode* helpers turn that tagged shape back into the
// engine's typed Result/TransactionResult values.

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func coordField(m map[string]any, key string) (hexcoord.TileCoord, bool) {
	raw, ok := m[key]
	if !ok {
		return hexcoord.TileCoord{}, false
	}
	list, ok := raw.([]any)
	if !ok || len(list) != 2 {
		return hexcoord.TileCoord{}, false
	}
	q, ok1 := toInt32(list[0])
	r, ok2 := toInt32(list[1])
	if !ok1 || !ok2 {
		return hexcoord.TileCoord{}, false
	}
	return hexcoord.TileCoord{Q: q, R: r}, true
}

func toInt32(v any) (int32, bool) {
	switch n := v.(type) {
	case int64:
		return int32(n), true
	case float64:
		return int32(n), true
	case int:
		return int32(n), true
	default:
		return 0, false
	}
}

func (a *Actor) tileIDField(m map[string]any, key string) (ids.TileId, bool) {
	s, ok := m[key].(string)
	if !ok {
		return 0, false
	}
	return ids.TileIdOf(a.registry.Interner.Intern(s)), true
}

func (a *Actor) itemStackField(m map[string]any, key string) (data.ItemStack, bool) {
	raw, ok := m[key]
	if !ok {
		return data.ItemStack{}, false
	}
	return a.itemStackFromMap(raw)
}

func (a *Actor) itemStackFromMap(raw any) (data.ItemStack, bool) {
	m, ok := asMap(raw)
	if !ok {
		return data.ItemStack{}, false
	}
	idStr, ok := m["id"].(string)
	if !ok {
		return data.ItemStack{}, false
	}
	amount, ok := toInt32(m["amount"])
	if !ok {
		return data.ItemStack{}, false
	}
	return data.ItemStack{Id: a.registry.Interner.Intern(idStr), Amount: amount}, true
}

func (a *Actor) decodeResult(raw any) (Result, bool) {
	m, ok := asMap(raw)
	if !ok {
		return nil, false
	}
	switch m["type"] {
	case "MakeTransaction":
		coord, ok := coordField(m, "coord")
		if !ok {
			return nil, false
		}
		sourceID, _ := a.tileIDField(m, "source_id")
		sourceCoord, _ := coordField(m, "source_coord")
		rawStacks, _ := m["stacks"].([]any)
		stacks := make([]data.ItemStack, 0, len(rawStacks))
		for _, rs := range rawStacks {
			if stack, ok := a.itemStackFromMap(rs); ok {
				stacks = append(stacks, stack)
			}
		}
		return MakeTransactionResult{
			Coord: coord, SourceID: sourceID, SourceCoord: sourceCoord, Stacks: stacks,
		}, true
	case "MakeExtractRequest":
		coord, ok := coordField(m, "coord")
		if !ok {
			return nil, false
		}
		fromID, _ := a.tileIDField(m, "requested_from_id")
		fromCoord, _ := coordField(m, "requested_from_coord")
		return MakeExtractRequestResult{
			Coord: coord, RequestedFromID: fromID, RequestedFromCoord: fromCoord,
			OnFail: a.decodeOnFailAction(m["on_fail_action"]),
		}, true
	default:
		return nil, false
	}
}

func (a *Actor) decodeOnFailAction(raw any) OnFailAction {
	switch v := raw.(type) {
	case string:
		switch v {
		case "RemoveTile":
			return OnFailAction{Kind: OnFailRemoveTile}
		case "RemoveAllData":
			return OnFailAction{Kind: OnFailRemoveAllData}
		}
	case map[string]any:
		if v["type"] == "RemoveData" {
			if s, ok := v["key"].(string); ok {
				return OnFailAction{Kind: OnFailRemoveData, RemoveKey: a.registry.Interner.Intern(s)}
			}
		}
	}
	return OnFailAction{Kind: OnFailNone}
}

func (a *Actor) decodeTransactionResult(raw any) (TransactionResult, bool) {
	m, ok := asMap(raw)
	if !ok {
		return nil, false
	}
	switch m["type"] {
	case "PassOn":
		coord, ok := coordField(m, "coord")
		if !ok {
			return nil, false
		}
		stack, _ := a.itemStackField(m, "stack")
		sourceCoord, _ := coordField(m, "source_coord")
		rootCoord, _ := coordField(m, "root_coord")
		rootID, _ := a.tileIDField(m, "root_id")
		return PassOnResult{
			Coord: coord, Stack: stack, SourceCoord: sourceCoord,
			RootCoord: rootCoord, RootID: rootID,
		}, true
	case "Proxy":
		coord, ok := coordField(m, "coord")
		if !ok {
			return nil, false
		}
		stack, _ := a.itemStackField(m, "stack")
		sourceCoord, _ := coordField(m, "source_coord")
		sourceID, _ := a.tileIDField(m, "source_id")
		rootCoord, _ := coordField(m, "root_coord")
		rootID, _ := a.tileIDField(m, "root_id")
		return ProxyResult{
			Coord: coord, Stack: stack, SourceCoord: sourceCoord, SourceID: sourceID,
			RootCoord: rootCoord, RootID: rootID,
		}, true
	case "Consume":
		consumed, _ := a.itemStackField(m, "consumed")
		sourceCoord, _ := coordField(m, "source_coord")
		rootCoord, _ := coordField(m, "root_coord")
		return ConsumeResult{Consumed: consumed, SourceCoord: sourceCoord, RootCoord: rootCoord}, true
	default:
		return nil, false
	}
}

func decodeRenderCommands(raw any) []RenderCommand {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]RenderCommand, 0, len(list))
	for _, item := range list {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		kind, _ := m["kind"].(string)
		args, _ := m["args"].(map[string]any)
		out = append(out, RenderCommand{Kind: kind, Args: args})
	}
	return out
}
