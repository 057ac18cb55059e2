package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vincentngwk/GIT-ML-DS/internal/analysis"
	cfgpkg "github.com/vincentngwk/GIT-ML-DS/internal/config"
	"github.com/vincentngwk/GIT-ML-DS/internal/logger"
	"github.com/vincentngwk/GIT-ML-DS/internal/server"
)

var (
	srvAddr        string
	srvBasePath    string
	srvMaxUploadMB int
	srvSeed        uint64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web app",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		f := cmd.Flags()
		if f.Changed("addr") {
			c.ListenAddr = srvAddr
		}
		if f.Changed("base-path") {
			c.BasePath = srvBasePath
		}
		if f.Changed("max-upload-mb") {
			c.MaxUploadMB = srvMaxUploadMB
		}
		if f.Changed("seed") {
			c.ExampleSeed = srvSeed
		}
		if err := c.Validate(); err != nil {
			return err
		}
		level := c.LogLevel
		if debug {
			level = "debug"
		}
		logger.InitLogger(level)

		srv := server.New(serverOptions(c), analysis.NewEngine(analysisOptions(c)))
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Printf("✓ The EDA App is running on %s%s/\n", displayAddr(c.ListenAddr), c.BasePath)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", ":8501", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&srvBasePath, "base-path", "", "mount the app under this path prefix")
	serveCmd.Flags().IntVar(&srvMaxUploadMB, "max-upload-mb", 200, "maximum upload size in MB")
	serveCmd.Flags().Uint64Var(&srvSeed, "seed", 0, "seed for the example dataset (0 = random)")
}

func serverOptions(c *cfgpkg.Global) server.Options {
	return server.Options{
		Addr:           c.ListenAddr,
		BasePath:       c.BasePath,
		MaxUploadBytes: int64(c.MaxUploadMB) << 20,
		TableMaxRows:   c.TableMaxRows,
		SessionTTL:     time.Duration(c.SessionTTLMin) * time.Minute,
		ExampleSeed:    c.ExampleSeed,
		ExampleCSVURL:  c.ExampleCSVURL,
	}
}

func analysisOptions(c *cfgpkg.Global) analysis.Options {
	opt := analysis.DefaultOptions()
	opt.Explorative = c.Explorative
	opt.MaxRows = c.MaxRows
	if c.SampleRows > 0 {
		opt.SampleRows = c.SampleRows
	}
	if c.OutlierThreshold > 0 {
		opt.OutlierThreshold = c.OutlierThreshold
	}
	if c.HistogramBins > 0 {
		opt.HistogramBins = c.HistogramBins
	}
	return opt
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
