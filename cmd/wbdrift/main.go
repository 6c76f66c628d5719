// Package main provides the CLI entrypoint for wbdrift.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/wbdrift/internal/charset"
	"github.com/verte-zerg/wbdrift/internal/client"
	"github.com/verte-zerg/wbdrift/internal/config"
	"github.com/verte-zerg/wbdrift/internal/game"
	"github.com/verte-zerg/wbdrift/internal/generator"
	"github.com/verte-zerg/wbdrift/internal/mappingui"
	"github.com/verte-zerg/wbdrift/internal/model"
	"github.com/verte-zerg/wbdrift/internal/server"
	"github.com/verte-zerg/wbdrift/internal/stats"
	"github.com/verte-zerg/wbdrift/internal/store"
	"github.com/verte-zerg/wbdrift/internal/tui"
)

const (
	defaultPort   = 3300
	defaultServer = "http://localhost:3300"
	defaultMode   = string(model.ModeChars)
	defaultFPS    = 30
	defaultSpeed  = 0.5
)

var (
	playServer    string
	playMode      string
	playChars     string
	playCharsFile string
	playFPS       int
	playSpeed     float64

	servePort        int
	serveMappingPath string
	serveStaticDir   string

	mappingServer string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wbdrift",
		Short:         "Drifting-character typing trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}
	addPlayFlags(rootCmd)

	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMappingCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Start a practice session (default command)",
		Args:  cobra.NoArgs,
		RunE:  runPlayCmd,
	}
	addPlayFlags(cmd)
	return cmd
}

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&playServer, "server", defaultServer, "mapping server base URL")
	cmd.Flags().StringVar(&playMode, "mode", defaultMode, "practice mode: char or wb")
	cmd.Flags().StringVar(&playChars, "chars", "", "characters to practice (default: keyboard symbols)")
	cmd.Flags().StringVar(&playCharsFile, "chars-file", "", "file with characters to practice")
	cmd.Flags().IntVar(&playFPS, "fps", defaultFPS, "animation frames per second")
	cmd.Flags().Float64Var(&playSpeed, "speed", defaultSpeed, "drift speed in cells per frame")
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "server", &playServer, fileCfg.Play.Server)
	applyStringConfig(cmd, "mode", &playMode, fileCfg.Play.Mode)
	applyStringConfig(cmd, "chars", &playChars, fileCfg.Play.Characters)
	applyStringConfig(cmd, "chars-file", &playCharsFile, fileCfg.Play.CharsFile)
	applyIntConfig(cmd, "fps", &playFPS, fileCfg.Play.FPS)
	applyFloatConfig(cmd, "speed", &playSpeed, fileCfg.Play.Speed)

	mode, ok := model.ParseMode(strings.TrimSpace(playMode))
	if !ok {
		return fmt.Errorf("--mode must be %q or %q", model.ModeChars, model.ModeMapping)
	}
	chars := playChars
	if playCharsFile != "" && !cmd.Flags().Changed("chars") {
		loaded, err := charset.LoadFile(playCharsFile)
		if err != nil {
			return fmt.Errorf("failed to load characters from %s: %w", playCharsFile, err)
		}
		chars = loaded
	}

	cfg := model.PlayConfig{
		Server:     playServer,
		Mode:       mode,
		Characters: chars,
		FPS:        playFPS,
		Speed:      playSpeed,
	}
	if err := validatePlayConfig(cfg); err != nil {
		return err
	}
	if err := requireTerminal(); err != nil {
		return err
	}

	engine := game.New(generator.New(), cfg.Speed)
	ui := tui.NewModel(cfg, client.New(cfg.Server), engine)
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	for _, summary := range ui.Summaries() {
		if err := stats.RenderSummary(cmd.OutOrStdout(), summary); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the mapping store server",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().IntVar(&servePort, "port", defaultPort, "listen port (env PORT)")
	cmd.Flags().StringVar(&serveMappingPath, "mapping-path", "", "mapping JSON file (default: XDG data dir)")
	cmd.Flags().StringVar(&serveStaticDir, "static-dir", "", "directory served at /")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	envCfg, err := config.ParseEnv()
	if err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	applyIntConfig(cmd, "port", &servePort, fileCfg.Server.Port)
	if envCfg.Port != 0 && !cmd.Flags().Changed("port") {
		servePort = envCfg.Port
	}
	applyStringConfig(cmd, "mapping-path", &serveMappingPath, fileCfg.Server.MappingPath)
	applyStringConfig(cmd, "static-dir", &serveStaticDir, fileCfg.Server.StaticDir)

	cfg := model.ServerConfig{
		Port:        servePort,
		MappingPath: serveMappingPath,
		StaticDir:   serveStaticDir,
	}
	if cfg.MappingPath == "" {
		cfg.MappingPath = config.DefaultMappingPath()
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("--port must be between 1 and 65535")
	}

	st, err := store.Open(cfg.MappingPath)
	if err != nil {
		return fmt.Errorf("failed to open mapping store: %w", err)
	}
	var opts []server.Option
	if cfg.StaticDir != "" {
		opts = append(opts, server.WithStaticDir(cfg.StaticDir))
	}
	srv := server.New(st, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logErrf("Serving %s on port %d\n", st.Path(), cfg.Port)
	if err := srv.Run(ctx, fmt.Sprintf(":%d", cfg.Port)); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func newMappingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Inspect and extend the mapping table",
	}
	cmd.PersistentFlags().StringVar(&mappingServer, "server", defaultServer, "mapping server base URL")
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the mapping table",
		Args:  cobra.NoArgs,
		RunE:  runMappingListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add KEY=CODE...",
		Short: "Merge entries into the mapping table",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runMappingAddCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "browse",
		Short: "Browse the mapping table",
		Args:  cobra.NoArgs,
		RunE:  runMappingBrowseCmd,
	})
	return cmd
}

func mappingClient(cmd *cobra.Command) (*client.Client, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if fileCfg.Play.Server != nil && !cmd.Flags().Changed("server") {
		mappingServer = *fileCfg.Play.Server
	}
	return client.New(mappingServer), nil
}

func runMappingListCmd(cmd *cobra.Command, _ []string) error {
	c, err := mappingClient(cmd)
	if err != nil {
		return err
	}
	mapping, err := c.FetchMapping(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch mapping: %w", err)
	}
	if err := stats.RenderMapping(cmd.OutOrStdout(), mapping); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runMappingAddCmd(cmd *cobra.Command, args []string) error {
	entries, err := parseEntries(args)
	if err != nil {
		return err
	}
	c, err := mappingClient(cmd)
	if err != nil {
		return err
	}
	merged, err := c.AddMapping(cmd.Context(), entries)
	if err != nil {
		return fmt.Errorf("failed to add mapping: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Saved %d entries (%d total)\n", len(entries), len(merged)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runMappingBrowseCmd(cmd *cobra.Command, _ []string) error {
	c, err := mappingClient(cmd)
	if err != nil {
		return err
	}
	if err := requireTerminal(); err != nil {
		return err
	}
	program := tea.NewProgram(mappingui.NewModel(c), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run mapping browser: %w", err)
	}
	return nil
}

// parseEntries turns KEY=CODE arguments into a mapping. The first '=' splits
// key from code so codes may contain '='.
func parseEntries(args []string) (model.Mapping, error) {
	entries := model.Mapping{}
	for _, arg := range args {
		key, code, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		code = strings.TrimSpace(code)
		if !ok || key == "" || code == "" {
			return nil, fmt.Errorf("invalid entry %q (expected KEY=CODE)", arg)
		}
		entries[key] = code
	}
	return entries, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# wbdrift configuration
# Uncomment a value to enable it. CLI flags override config values.

[server]
# port = %d                # Listen port (env PORT overrides)
# mapping-path = %q        # Mapping JSON file
# static-dir = ""          # Directory served at /

[play]
# server = %q              # Mapping server base URL
# mode = %q                # "char" or "wb"
# characters = ""          # Characters to practice (empty: keyboard symbols)
# chars-file = ""          # File with characters to practice
# fps = %d                 # Animation frames per second
# speed = %.1f             # Drift speed in cells per frame
`,
		defaultPort,
		config.DefaultMappingPath(),
		defaultServer,
		defaultMode,
		defaultFPS,
		defaultSpeed,
	)
}

func validatePlayConfig(cfg model.PlayConfig) error {
	if strings.TrimSpace(cfg.Server) == "" {
		return fmt.Errorf("--server must not be empty")
	}
	if cfg.FPS <= 0 || cfg.FPS > 240 {
		return fmt.Errorf("--fps must be between 1 and 240")
	}
	if cfg.Speed <= 0 {
		return fmt.Errorf("--speed must be > 0")
	}
	return nil
}

func requireTerminal() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("an interactive terminal is required")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
