package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/glproxy/config"
	"github.com/wippyai/glproxy/host"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to "+config.FileName+" (optional)")
		scriptFile  = flag.String("script", "", "Run commands from a file instead of stdin")
		serve       = flag.Bool("serve", false, "Run as an executor process on stdin/stdout")
		interactive = flag.Bool("i", false, "Interactive mode with TUI (default when stdin is a terminal)")
		mode        = flag.String("executor", "", "Override executor mode (local, pipe, remote)")
	)
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Executor.Mode = *mode
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	config.InstallLogger(logger)

	if *serve {
		if err := runServer(logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	useTUI := *interactive || (*scriptFile == "" && term.IsTerminal(int(os.Stdin.Fd())))
	if useTUI {
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	in := io.Reader(os.Stdin)
	if *scriptFile != "" {
		f, err := os.Open(*scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}
	if err := runScript(cfg, in, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads path, or glproxy.toml in the working directory if it
// exists, or falls back to the defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(config.FileName); err == nil {
		return config.Load(config.FileName)
	}
	return config.Default(), nil
}

// runServer serves one executor connection on stdin and stdout.
func runServer(logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	logger.Info("executor serving on stdio", zap.Int("pid", os.Getpid()))
	srv := &host.Server{}
	return srv.Serve(ctx, host.StdioConn{In: os.Stdin, Out: os.Stdout})
}

// runScript executes commands line by line. Command errors are reported
// and the script goes on; only I/O and setup failures stop it.
func runScript(cfg *config.Config, in io.Reader, out io.Writer) error {
	s, err := newSession(cfg.ContextOptions())
	if err != nil {
		return err
	}
	defer s.close()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	line := 0
	for scanner.Scan() {
		line++
		lines, err := s.exec(scanner.Text())
		for _, l := range lines {
			fmt.Fprintln(out, l)
		}
		if err != nil {
			fmt.Fprintf(out, "line %d: %v\n", line, err)
		}
	}
	return scanner.Err()
}
