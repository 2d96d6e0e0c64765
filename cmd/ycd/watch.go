package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/rubpy/crawly"
	"github.com/rubpy/crawly/clog"
	ycd "github.com/rubpy/ycd-go"
)

//////////////////////////////////////////////////

const logHeader = "[watch] "

func watchFlags(fset *pflag.FlagSet) {
	contentTypeFlag(fset)
	fset.Duration("watch-interval", ycd.DefaultSettings.PollInterval, "delay between two passes over the tracked jobs")
}

// watchHandle turns an argument into a job ID handle, or a source URL handle
// for which a job is created on the first pass.
func watchHandle(arg string, contentType string) (ycd.Handle, error) {
	if strings.Contains(arg, "://") || strings.Contains(arg, "youtube.com") || strings.Contains(arg, "youtu.be") {
		kind, err := resolveKind(contentType, arg)
		if err != nil {
			return ycd.Handle{}, err
		}

		return ycd.SourceURL(arg, kind), nil
	}

	return ycd.JobID(ycd.DownloadID(arg)), nil
}

func runWatch(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: ID or URL", MissingArgument)
	}

	c, err := a.client(ctx)
	if err != nil {
		return err
	}

	w, err := ycd.NewWatcher(c)
	if err != nil {
		return err
	}

	interval := a.cfg.WatchInterval
	if interval < time.Second {
		interval = time.Second
	}

	settings := w.Settings()
	settings.MinimumTrackingDelay = interval
	w.SetSettings(settings)

	for _, arg := range args {
		handle, err := watchHandle(arg, a.cfg.ContentType)
		if err != nil {
			return err
		}

		if _, err := w.Track(ctx, handle); err != nil {
			return fmt.Errorf("ycd.Watcher.Track: %w", err)
		}
	}

	done := make(chan struct{})
	go listenWatcher(ctx, w, done)

	printWatchHelp(args)

	if err = w.Start(ctx, crawly.SessionSettings{
		Interval:          interval,
		SinglePassTimeout: interval + 30*time.Second,
	}); err != nil {
		return fmt.Errorf("ycd.Watcher.Start: %w", err)
	}
	defer w.Stop(context.Background())

	ui := NewUI()
	quit := func(_ *UI, e *UIKeyEvent) error {
		e.StopPropagation()

		w.Log(ctx, clog.Params{
			Message: logHeader + "quitting",
			Level:   slog.LevelInfo,
		})
		a.stop()

		return nil
	}
	ui.BindKey(UIKeySubject{Rune: 'q'}, quit)
	ui.BindKey(UIKeySubject{Key: keyboard.KeyCtrlC}, quit)
	ui.BindKey(UIKeySubject{Key: keyboard.KeySpace}, func(_ *UI, e *UIKeyEvent) error {
		verb := "paused"
		if w.Paused() {
			w.Resume(ctx)
			verb = "resumed"
		} else {
			w.Pause(ctx)
		}

		w.Log(ctx, clog.Params{
			Message: logHeader + verb,
			Level:   slog.LevelInfo,
		})

		return nil
	})
	ui.BindKey(UIKeySubject{Rune: 'i'}, func(_ *UI, e *UIKeyEvent) error {
		lp := clog.Params{
			Message: logHeader + "immediate",
			Level:   slog.LevelInfo,
		}

		_, lp.Err = w.Immediate(ctx, 0)

		w.Log(ctx, lp)
		return nil
	})
	ui.BindKey(UIKeySubject{Rune: 'u'}, func(_ *UI, e *UIKeyEvent) error {
		lp := clog.Params{
			Message: logHeader + "untracking all",
			Level:   slog.LevelInfo,
		}

		var n int
		n, lp.Err = w.UntrackAll(ctx)
		lp.Set("untracked", n)

		w.Log(ctx, lp)
		return nil
	})
	ui.BindKey(UIKeySubject{Key: keyboard.KeyEnter}, func(_ *UI, e *UIKeyEvent) error {
		fmt.Println()

		return nil
	})

	go func() {
		if err := ui.Listen(ctx); err != nil && ctx.Err() == nil {
			w.Log(ctx, clog.Params{
				Message: logHeader + "keyboard",
				Level:   slog.LevelWarn,
				Err:     err,
			})
		}
	}()
	defer ui.Close()

	select {
	case <-ctx.Done():
	case <-done:
		color.New(color.FgGreen).Fprintln(os.Stderr, "all jobs finished")
	}

	return nil
}

// listenWatcher prints status changes and closes done once nothing is left to
// track.
func listenWatcher(ctx context.Context, w *ycd.Watcher, done chan<- struct{}) {
	l := w.Listen()
	defer l.Discard()

	ch := l.Channel()
	for {
		select {
		case <-ctx.Done():
			return

		case result, ok := <-ch:
			if !ok {
				return
			}

			for _, tr := range result.Orders {
				if tr.Order.Err != nil {
					color.New(color.FgRed).Fprintf(os.Stderr, "%s: %v\n", tr.Order.Value.Handle, tr.Order.Err)
					continue
				}

				if data, ok := ycd.ResultEntityData(tr); ok && data.Download != nil {
					printStatus(data)
				}
			}

			for _, tr := range result.Entities {
				// Skipped until the minimum tracking delay has elapsed.
				if tr.Entity.Action == crawly.TrackingActionNone {
					continue
				}

				if tr.Entity.Err != nil {
					color.New(color.FgRed).Fprintf(os.Stderr, "%s: %v\n", tr.Entity.Value.Handle, tr.Entity.Err)
					continue
				}

				data, ok := ycd.ResultEntityData(tr)
				if !ok || data.Download == nil || !data.Changed {
					continue
				}

				printStatus(data)
			}

			if len(result.Orders) == 0 && len(w.Tracked()) == 0 {
				close(done)
				return
			}
		}
	}
}

func printStatus(data ycd.EntityData) {
	dl := data.Download

	c := color.New(color.FgCyan)
	switch dl.Status {
	case ycd.StatusFinished:
		c = color.New(color.FgGreen)
	case ycd.StatusError:
		c = color.New(color.FgRed)
	}

	source := data.Source
	if source == "" {
		source = dl.URL
	}

	c.Printf("%-12s %s %s\n", dl.Status, dl.ID, source)
}

func printWatchHelp(args []string) {
	fmt.Println("========================================")
	fmt.Println(" Controls:")
	fmt.Println("   Q     --- quit")
	fmt.Println("   Space --- pause/resume")
	fmt.Println("   I     --- poll immediately")
	fmt.Println("   U     --- untrack all jobs")

	fmt.Println("========================================")
	fmt.Println(" Tracking:")
	for _, arg := range args {
		fmt.Println("  ", arg)
	}

	fmt.Println("========================================")
	fmt.Println()
}
