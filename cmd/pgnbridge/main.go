// Package main provides the pgnbridge CLI: it drives a browser to the
// game-review page of the source site, captures the finished game by
// intercepting the site's own export action, copies it to the clipboard,
// and pastes it into the destination site's analysis page in a new tab.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pgnbridge/pgnbridge/pkg/agent"
	"github.com/pgnbridge/pgnbridge/pkg/browser"
	"github.com/pgnbridge/pgnbridge/pkg/clipboard"
	"github.com/pgnbridge/pgnbridge/pkg/config"
	"github.com/pgnbridge/pgnbridge/pkg/logging"
	"github.com/pgnbridge/pgnbridge/pkg/ui"
)

const version = "0.1.0"

// Flags holds the parsed command line.
type Flags struct {
	SourceURL   string
	DestURL     string
	ConfigPath  string
	Headless    bool
	Interactive bool
	ShowVersion bool
}

func main() {
	flags := parseFlags()

	if flags.ShowVersion {
		fmt.Printf("pgnbridge v%s\n", version)
		return
	}

	if err := flags.validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	if err := run(ctx, flags); err != nil {
		cancel()
		log.Fatalf("pgnbridge: %v", err)
	}
}

func parseFlags() *Flags {
	flags := &Flags{}

	flag.StringVar(&flags.SourceURL, "source-url", "", "URL of the finished game's review page (required)")
	flag.StringVar(&flags.DestURL, "dest-url", "", "URL of the analysis paste page (default from config)")
	flag.StringVar(&flags.ConfigPath, "config", "", "Path to a YAML config file overriding selectors and timeouts")
	flag.BoolVar(&flags.Headless, "headless", false, "Run the browser without a window")
	flag.BoolVar(&flags.Interactive, "interactive", false, "Inject the trigger button and wait for a click instead of transferring immediately")
	flag.BoolVar(&flags.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pgnbridge - move a finished game to your analysis site\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pgnbridge -source-url <url> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  pgnbridge -source-url https://www.chess.com/game/live/123456789\n")
		fmt.Fprintf(os.Stderr, "  pgnbridge -source-url ... -interactive        # click the injected button yourself\n")
		fmt.Fprintf(os.Stderr, "  pgnbridge -source-url ... -headless           # no browser window\n")
	}

	flag.Parse()
	return flags
}

func (f *Flags) validate() error {
	if f.SourceURL == "" {
		return fmt.Errorf("-source-url is required")
	}
	if f.Interactive && f.Headless {
		return fmt.Errorf("-interactive needs a visible browser; drop -headless")
	}
	return nil
}

func run(ctx context.Context, flags *Flags) error {
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return err
	}
	cfg.SourceURL = flags.SourceURL
	if flags.DestURL != "" {
		cfg.DestinationURL = flags.DestURL
	}
	cfg.Headless = cfg.Headless || flags.Headless

	logger, logErr := logging.NewLogger("main")
	if logErr != nil {
		fmt.Fprintln(os.Stderr, ui.RenderInfo("file logging unavailable, using stderr"))
	}
	defer logger.Close()
	logger.Infof("pgnbridge v%s starting, run %s", version, logger.RunID())

	manager := browser.NewManager()
	if err := manager.Initialize(); err != nil {
		return err
	}
	defer func() {
		if err := manager.Shutdown(); err != nil {
			logger.Warnf("browser shutdown: %v", err)
		}
	}()

	session, err := manager.StartSession(browser.SessionOptions{Headless: cfg.Headless})
	if err != nil {
		return err
	}

	fmt.Println(ui.RenderInfo("opening " + cfg.SourceURL))
	if err := session.Navigate(cfg.SourceURL, browser.NavigateOptions{WaitUntil: "domcontentloaded"}); err != nil {
		return err
	}

	sourceLog, _ := logging.NewLogger("source")
	defer sourceLog.Close()

	source := agent.NewSourceAgent(session, manager, clipboard.NewSystem(), cfg, sourceLog)
	source.OnState = func(state agent.State) {
		fmt.Println(ui.RenderState(string(state)))
	}
	source.Notifier().Echo = func(level agent.Level, message string) {
		fmt.Println(ui.RenderToast(string(level), message))
	}
	defer source.Close()

	if err := source.Arm(ctx); err != nil {
		return err
	}

	if flags.Interactive {
		return runInteractive(ctx, cfg, source)
	}

	if err := source.Transfer(ctx); err != nil {
		return err
	}
	return runDestination(ctx, cfg, source)
}

// runInteractive waits for the injected trigger to be clicked, then
// finishes the transfer on the destination tab. Failed transfers leave
// the trigger armed for another attempt.
func runInteractive(ctx context.Context, cfg config.Config, source *agent.SourceAgent) error {
	fmt.Println(ui.RenderInfo("click the injected button on the game page to transfer (Ctrl-C to quit)"))

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-source.Results():
			if err != nil {
				// Already surfaced via state and toast; keep waiting.
				continue
			}
			if err := runDestination(ctx, cfg, source); err != nil {
				return err
			}
			fmt.Println(ui.RenderInfo("done; browser stays open until Ctrl-C"))
			<-ctx.Done()
			return nil
		}
	}
}

// runDestination runs the paste-and-submit flow on the tab the source
// agent opened.
func runDestination(ctx context.Context, cfg config.Config, source *agent.SourceAgent) error {
	dest := source.DestinationSession()
	if dest == nil {
		return fmt.Errorf("no destination tab was opened")
	}

	destLog, _ := logging.NewLogger("destination")
	defer destLog.Close()

	destAgent, err := agent.NewDestinationAgent(dest, clipboard.NewSystem(), cfg, destLog)
	if err != nil {
		return err
	}
	destAgent.OnState = func(state agent.State) {
		fmt.Println(ui.RenderState(string(state)))
	}
	destAgent.Notifier().Echo = func(level agent.Level, message string) {
		fmt.Println(ui.RenderToast(string(level), message))
	}

	return destAgent.Run(ctx)
}
