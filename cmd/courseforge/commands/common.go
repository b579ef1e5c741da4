package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/courseforge/internal/build"
	"git.home.luguber.info/inful/courseforge/internal/config"
	"git.home.luguber.info/inful/courseforge/internal/eventstore"
	ferrors "git.home.luguber.info/inful/courseforge/internal/foundation/errors"
	"git.home.luguber.info/inful/courseforge/internal/gitinfo"
	"git.home.luguber.info/inful/courseforge/internal/logfields"
	"git.home.luguber.info/inful/courseforge/internal/metrics"
)

// Global is shared state handed to every command.
type Global struct {
	Logger *slog.Logger
	// Out receives user-facing output.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the course site"`
	Watch   WatchCmd   `cmd:"" help:"Build, serve and rebuild the site on change"`
	History HistoryCmd `cmd:"" help:"List recorded builds of a content tree"`

	// Settings are read from the environment after parsing.
	Settings config.Settings `kong:"-"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	c.Settings = config.SettingsFromEnv()
	level := slog.LevelInfo
	if c.Verbose || c.Settings.Debug {
		c.Verbose = true
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// SiteFlags are shared by the commands that build a site.
type SiteFlags struct {
	Content     string `short:"c" name:"content" required:"" type:"existingdir" help:"Content root directory."`
	Output      string `short:"o" name:"output" required:"" help:"Output directory for the generated site."`
	TemplateDir string `short:"t" name:"template-dir" help:"Template directory overriding the embedded templates (env COURSEFORGE_TEMPLATE_DIR)."`
	Force       bool   `short:"f" help:"Render every page regardless of stored checksums."`
	GitDates    bool   `name:"git-dates" help:"Use the last commit date of each page when front matter has no date."`
	NoHistory   bool   `name:"no-history" help:"Do not record build history."`
	Minify      bool   `help:"Minify generated HTML."`
}

// siteRuntime holds the per-invocation collaborators shared by builders.
type siteRuntime struct {
	flags    SiteFlags
	cacheDir string
	history  *eventstore.SQLiteStore
	dates    gitinfo.DateResolver
}

// openSite resolves flags against the environment and opens optional
// build history and git date lookup. Failures of either are logged and the
// feature disabled.
func openSite(flags SiteFlags, settings config.Settings) (*siteRuntime, error) {
	content, err := filepath.Abs(flags.Content)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid content directory").Build()
	}
	flags.Content = content
	if flags.TemplateDir == "" {
		flags.TemplateDir = settings.TemplateDir
	}
	if flags.TemplateDir != "" {
		if st, err := os.Stat(flags.TemplateDir); err != nil || !st.IsDir() {
			return nil, ferrors.ValidationError("template directory not found").
				WithContext("path", flags.TemplateDir).
				Build()
		}
	}

	rt := &siteRuntime{flags: flags, dates: gitinfo.NoopResolver{}}
	if dir, err := settings.ResolveCacheDir(); err != nil {
		slog.Warn("No cache directory, incremental state and history disabled", logfields.Error(err))
	} else {
		rt.cacheDir = dir
	}

	if !flags.NoHistory && rt.cacheDir != "" {
		store, err := eventstore.OpenProject(rt.cacheDir, content)
		if err != nil {
			slog.Warn("Build history unavailable", logfields.Error(err))
		} else {
			rt.history = store
		}
	}
	if flags.GitDates {
		repo, err := gitinfo.Open(content)
		if err != nil {
			slog.Warn("Git dates unavailable", logfields.Path(content), logfields.Error(err))
		} else {
			rt.dates = repo
		}
	}
	return rt, nil
}

// builder returns a Builder for the runtime. force overrides the flag.
func (rt *siteRuntime) builder(force bool, rec metrics.Recorder) *build.Builder {
	opts := []build.Option{build.WithDateResolver(rt.dates)}
	if rt.history != nil {
		opts = append(opts, build.WithHistory(eventstore.NewStoreRecorder(rt.history)))
	}
	if rec != nil {
		opts = append(opts, build.WithRecorder(rec))
	}
	return build.New(build.Options{
		OutputDir:   rt.flags.Output,
		TemplateDir: rt.flags.TemplateDir,
		CacheDir:    rt.cacheDir,
		Force:       force || rt.flags.Force,
		Minify:      rt.flags.Minify,
	}, opts...)
}

// historyRetention is the number of builds kept in the history database.
const historyRetention = 100

func (rt *siteRuntime) pruneHistory(ctx context.Context) {
	if rt.history == nil {
		return
	}
	n, err := rt.history.Prune(ctx, historyRetention)
	if err != nil {
		slog.Warn("Failed to prune build history", logfields.Error(err))
		return
	}
	if n > 0 {
		slog.Debug("Pruned build history", logfields.Count(int(n)))
	}
}

func (rt *siteRuntime) Close() {
	if rt.history != nil {
		if err := rt.history.Close(); err != nil {
			slog.Warn("Failed to close build history", logfields.Error(err))
		}
	}
}
