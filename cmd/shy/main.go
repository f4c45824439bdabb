// Command shy is a minimal demonstration CLI over the parser, evaluator,
// and cache packages. It is not a REPL and does not implement ruleset
// aggregation; it exists to exercise Parse, Exec, and the cache from the
// command line.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/shy-lang/shy/cache"
	"github.com/shy-lang/shy/context"
	"github.com/shy-lang/shy/eval"
	"github.com/shy-lang/shy/parser"
	"github.com/shy-lang/shy/value"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "eval":
		err = runEval(os.Args[2:])
	case "cache-stats":
		err = runCacheStats(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "shy:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  shy eval [--ctx JSON] <source>
  shy cache-stats [--capacity N]`)
}

func runEval(args []string) error {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	ctxJSON := fs.String("ctx", "{}", "JSON object of initial variables")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("eval: missing <source> argument")
	}
	source := fs.Arg(0)

	ctx, err := contextFromJSON(*ctxJSON)
	if err != nil {
		return fmt.Errorf("--ctx: %w", err)
	}

	expr, err := parser.Parse(source)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	result, err := eval.Exec(expr, ctx)
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}

	tree, _ := value.ToJSON(result)
	out, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// contextFromJSON builds a Context whose variables are seeded from a JSON
// object, e.g. {"x": 5, "well": {"depth": 12}}; nested objects become Object
// values.
func contextFromJSON(raw string) (*context.ExecutionContext, error) {
	var tree map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		return nil, err
	}

	ctx := context.New()
	for name, v := range tree {
		val, err := value.FromJSON(v)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		ctx.Store([]string{name}, val)
	}
	return ctx, nil
}

func runCacheStats(args []string) error {
	fs := flag.NewFlagSet("cache-stats", flag.ExitOnError)
	capacity := fs.Int("capacity", 256, "cache capacity to report")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c := cache.New(*capacity)
	fmt.Printf("capacity: %d\n", c.Capacity())
	fmt.Printf("size:     %d\n", c.Size())
	return nil
}
