package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/dayquote/internal/cli"
)

type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" help:"Show database path."`
	DumpValue    *DebugDumpValueCmd    `cmd:"" help:"Dump one stored value as JSON."`
	DumpValues   *DebugDumpValuesCmd   `cmd:"" help:"Dump every stored value as JSON."`
	DumpTriggers *DebugDumpTriggersCmd `cmd:"" help:"Dump scheduled notifications as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugDumpValueCmd struct {
	Key string `arg:"" help:"Key of the value to dump (e.g. preferences, streak_log)."`
}

func (cmd *DebugDumpValueCmd) Run(ctx *cli.Context) error {
	v, ok, err := ctx.Store.GetValue(cmd.Key)
	if err != nil {
		return fmt.Errorf("failed to get value: %w", err)
	}
	if !ok {
		return fmt.Errorf("no value stored under key: %s", cmd.Key)
	}
	return printJSON(ctx, rawValue(v))
}

type DebugDumpValuesCmd struct{}

func (cmd *DebugDumpValuesCmd) Run(ctx *cli.Context) error {
	values, err := ctx.Store.GetAllValues()
	if err != nil {
		return fmt.Errorf("failed to get values: %w", err)
	}
	out := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		out[k] = rawValue(v)
	}
	return printJSON(ctx, out)
}

type DebugDumpTriggersCmd struct{}

func (cmd *DebugDumpTriggersCmd) Run(ctx *cli.Context) error {
	triggers, err := ctx.Store.GetAllTriggers()
	if err != nil {
		return fmt.Errorf("failed to get triggers: %w", err)
	}
	return printJSON(ctx, triggers)
}

// rawValue embeds stored JSON as-is and quotes anything that is not JSON.
func rawValue(v string) json.RawMessage {
	if json.Valid([]byte(v)) {
		return json.RawMessage(v)
	}
	quoted, _ := json.Marshal(v)
	return quoted
}

func printJSON(ctx *cli.Context, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}
