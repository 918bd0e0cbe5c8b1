package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"extract-viewer/internal/config"
	"extract-viewer/internal/domain"
	"extract-viewer/internal/handler"
	"extract-viewer/internal/notify"
	"extract-viewer/internal/render"
	"extract-viewer/internal/repository"
	"extract-viewer/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	root := &cobra.Command{
		Use:           "extract-viewer",
		Short:         "Upload files for extraction and browse the results",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), renderCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	// Wiring
	container, err := config.NewContainer()
	if err != nil {
		return err
	}
	defer container.Close()

	server := &http.Server{
		Addr:              ":" + container.Config.GetServerPort(),
		Handler:           handler.NewRouter(container),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		container.Logger.Info("Server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		container.Logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	container.Logger.Info("Server exited")
	return err
}

func renderCmd() *cobra.Command {
	var asHTML bool
	cmd := &cobra.Command{
		Use:   "render <response.json>",
		Short: "Render a saved extraction response without a browser",
		Long: "Render a saved extraction response as plain text, or as the HTML blocks the page shows.\n" +
			"Use - to read the response from stdin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return renderResponse(in, cmd.OutOrStdout(), asHTML)
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "write HTML blocks instead of text")
	return cmd
}

func renderResponse(in io.Reader, out io.Writer, asHTML bool) error {
	result, err := repository.DecodeUploadResponse(in)
	if err != nil {
		return err
	}

	appLogger := logger.NewLoggerWithWriter(os.Getenv("LOG_LEVEL"), os.Stderr)
	notifier := notify.NewCenter()
	renderer := render.NewRenderer(domain.Capabilities{}, render.NewModal(), notifier, appLogger)
	view := renderer.Render(result).View()

	if asHTML {
		return render.WriteHTML(out, view)
	}

	fmt.Fprintf(out, "%s (%s)\n", view.Filename, view.ContentType)
	if links := view.DownloadLinks; links != nil {
		fmt.Fprintf(out, "original: %s\ntext: %s\n", links.Original, links.Text)
	}
	for _, b := range view.Blocks {
		fmt.Fprintf(out, "\n== %s [%s]\n", b.Label, b.Badge)
		if b.Image != nil {
			fmt.Fprintf(out, "image: %s\n", b.Image.Locator)
		}
		if b.Audio != nil {
			fmt.Fprintf(out, "audio: %s\n", b.Audio.Locator)
		}
		if b.Video != nil {
			fmt.Fprintf(out, "video: %s (%d frames)\n", b.Video.Locator, len(b.Video.Frames))
		}
		if b.Text != nil {
			for _, p := range b.Text.Paragraphs {
				fmt.Fprintf(out, "\n%s\n", p)
			}
		}
	}
	return nil
}
