package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/embwasm/hostshim/runtime"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to guest wasm file")
		funcName    = flag.String("func", "", "Function to call (optional)")
		funcArgs    = flag.String("args", "", "Integer arguments (comma-separated)")
		capacity    = flag.Uint("capacity", runtime.DefaultArenaCapacity, "Arena capacity in bytes")
		pages       = flag.Uint("pages", runtime.DefaultGuestPages, "Guest memory limit in 64KiB pages")
		list        = flag.Bool("list", false, "List exported functions and exit")
		verbose     = flag.Bool("v", false, "Log platform diagnostics and guest output")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *wasmFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: run -wasm <file.wasm> [-func name] [-args 1,2,3]")
		fmt.Fprintln(os.Stderr, "       run -wasm <file.wasm> -list")
		fmt.Fprintln(os.Stderr, "       run -wasm <file.wasm> -i  (interactive mode)")
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*wasmFile, uint32(*capacity), uint32(*pages)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*wasmFile, *funcName, *funcArgs, uint32(*capacity), uint32(*pages), *list, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(wasmFile, funcName, argsStr string, capacity, pages uint32, listOnly, verbose bool) error {
	ctx := context.Background()

	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	logger := zap.NewNop()
	if verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer logger.Sync()
	}

	rt, err := runtime.New(ctx, &runtime.Config{
		ArenaCapacity: capacity,
		GuestPages:    pages,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("create runtime: %w", err)
	}
	defer rt.Close(ctx)

	mod, err := rt.Load(ctx, data)
	if err != nil {
		return fmt.Errorf("load module: %w", err)
	}

	exports := mod.ExportedFunctions()
	fmt.Printf("Module: %s\n", wasmFile)
	fmt.Printf("Exported functions:\n")
	for _, name := range exports {
		fmt.Printf("  %s\n", name)
	}

	if listOnly {
		return nil
	}

	inst, err := mod.Instantiate(ctx)
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}
	defer inst.Close(ctx)

	// If no function specified, try common entry points.
	if funcName == "" {
		for _, name := range []string{"_start", "run", "main"} {
			for _, f := range exports {
				if f == name {
					funcName = name
					break
				}
			}
			if funcName != "" {
				break
			}
		}
		if funcName == "" && len(exports) == 1 {
			funcName = exports[0]
		}
		if funcName == "" {
			fmt.Printf("\nNo function specified and no common entry point found.\n")
			fmt.Printf("Use -func to specify a function to call.\n")
			return nil
		}
	}

	args, err := parseArgs(argsStr)
	if err != nil {
		return err
	}

	fmt.Printf("\nCalling %s(%s)...\n", funcName, argsStr)
	results, err := inst.Call(ctx, funcName, args...)
	if err != nil {
		return fmt.Errorf("call %s: %w", funcName, err)
	}

	for _, r := range results {
		fmt.Printf("Result: %d\n", r)
	}

	a := rt.Arena()
	fmt.Printf("\nArena: %d of %d bytes used (%d available)\n", a.Used(), a.Capacity(), a.Available())
	return nil
}

func parseArgs(argsStr string) ([]uint64, error) {
	if argsStr == "" {
		return nil, nil
	}
	var args []uint64
	for _, s := range strings.Split(argsStr, ",") {
		v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", s, err)
		}
		args = append(args, v)
	}
	return args, nil
}
