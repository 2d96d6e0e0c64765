package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	ycd "github.com/rubpy/ycd-go"
	"github.com/rubpy/ycd-go/ytdata"
	"github.com/rubpy/ycd-go/ytlink"
)

//////////////////////////////////////////////////

var MissingArgument = errors.New("missing argument")

const autoContentType = "auto"

func contentTypeFlag(fset *pflag.FlagSet) {
	fset.String("content-type", autoContentType, "content type ("+autoContentType+", "+contentKindNames()+")")
}

func contentKindNames() string {
	names := make([]string, 0, len(ycd.ContentKinds))
	for _, k := range ycd.ContentKinds {
		names = append(names, k.String())
	}

	return strings.Join(names, ", ")
}

// resolveKind infers the content type from the URL when the flag is "auto".
func resolveKind(flag string, rawURL string) (ycd.ContentKind, error) {
	if flag == "" || strings.EqualFold(flag, autoContentType) {
		kind, err := ytlink.Infer(rawURL)
		if err != nil {
			return "", fmt.Errorf("%s: %w (set --content-type)", rawURL, err)
		}

		return ycd.ContentKind(kind.String()), nil
	}

	return ycd.ParseContentKind(flag)
}

func (a *app) executeResource(ctx context.Context, params ...ycd.ResourceParams) error {
	c, err := a.client(ctx)
	if err != nil {
		return err
	}

	r, err := ycd.NewResource(c)
	if err != nil {
		return err
	}

	items, err := r.Execute(ctx, params, ycd.ExecuteOptions{ContinueOnFail: a.cfg.ContinueOnFail})
	if err != nil {
		return err
	}

	summary, err := writeItems(os.Stdout, items, a.cfg.Out)
	if err != nil {
		return err
	}
	summary.print(os.Stderr)

	return nil
}

//////////////////////////////////////////////////

func runTest(ctx context.Context, a *app, _ []string) error {
	c, err := a.client(ctx)
	if err != nil {
		return err
	}

	user, err := c.TestCredential(ctx)
	if err != nil {
		return fmt.Errorf("credential test failed: %w", err)
	}

	color.New(color.FgGreen).Fprintf(os.Stderr, "credential OK (%s)\n", c.BaseURL())
	if user != nil {
		return printJSON(os.Stdout, user)
	}

	return nil
}

//////////////////////////////////////////////////

func downloadFlags(fset *pflag.FlagSet) {
	contentTypeFlag(fset)
	fset.String("return-format", string(ycd.ReturnJSON), "json (one item per comment) or file")
	fset.String("file-format", "json", "file format with --return-format file (csv, xlsx, html, json, txt)")
	fset.Duration("poll-interval", ycd.DefaultSettings.PollInterval, "delay between status requests")
	fset.Int("concurrency", ycd.DefaultSettings.Concurrency, "URLs processed at the same time")
	fset.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	addExecuteFlags(fset)
	addOutputFlags(fset)
}

func runDownload(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: URL", MissingArgument)
	}

	mode := ycd.ReturnFormat(strings.ToLower(a.cfg.ReturnFormat))
	if !mode.Valid() {
		return ycd.InvalidReturnFormat
	}

	var format ycd.FileFormat
	if mode == ycd.ReturnFile {
		var err error
		if format, err = ycd.ParseFileFormat(a.cfg.FileFormat); err != nil {
			return err
		}
	}

	params := make([]ycd.DownloadParams, 0, len(args))
	for _, rawURL := range args {
		kind, err := resolveKind(a.cfg.ContentType, rawURL)
		if err != nil {
			return err
		}

		params = append(params, ycd.DownloadParams{
			URL:          rawURL,
			ContentType:  kind,
			ReturnFormat: mode,
			FileFormat:   format,
		})
	}

	col, err := a.serveMetrics(ctx)
	if err != nil {
		return err
	}

	var opts []ycd.ConfigOption
	if col != nil {
		opts = append(opts, ycd.WithObserver(col))
	}

	c, err := a.client(ctx, opts...)
	if err != nil {
		return err
	}

	d, err := ycd.NewDownloader(c)
	if err != nil {
		return err
	}

	items, err := d.Execute(ctx, params, ycd.ExecuteOptions{ContinueOnFail: a.cfg.ContinueOnFail})
	if err != nil {
		return err
	}

	summary, err := writeItems(os.Stdout, items, a.cfg.Out)
	if err != nil {
		return err
	}
	summary.print(os.Stderr)

	return nil
}

//////////////////////////////////////////////////

func createFlags(fset *pflag.FlagSet) {
	contentTypeFlag(fset)
}

func runCreate(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: URL", MissingArgument)
	}

	params := make([]ycd.ResourceParams, 0, len(args))
	for _, rawURL := range args {
		kind, err := resolveKind(a.cfg.ContentType, rawURL)
		if err != nil {
			return err
		}

		params = append(params, ycd.ResourceParams{
			Operation:   ycd.OperationCreate,
			URL:         rawURL,
			ContentType: kind,
		})
	}

	return a.executeResource(ctx, params...)
}

func runGet(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: ID", MissingArgument)
	}

	params := make([]ycd.ResourceParams, 0, len(args))
	for _, id := range args {
		params = append(params, ycd.ResourceParams{
			Operation:  ycd.OperationGet,
			DownloadID: ycd.DownloadID(id),
		})
	}

	return a.executeResource(ctx, params...)
}

func listFlags(fset *pflag.FlagSet) {
	fset.Int("limit", ycd.DefaultSettings.ListLimit, "maximum number of jobs")
	fset.Bool("all", false, "list every job, ignoring --limit")
}

func runList(ctx context.Context, a *app, _ []string) error {
	return a.executeResource(ctx, ycd.ResourceParams{
		Operation: ycd.OperationGetAll,
		Limit:     a.cfg.Limit,
		ReturnAll: a.cfg.All,
	})
}

func saveFlags(fset *pflag.FlagSet) {
	fset.String("file-format", "json", "file format (csv, xlsx, html, json, txt)")
	addExecuteFlags(fset)
	addOutputFlags(fset)
}

func runSave(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: ID", MissingArgument)
	}

	format, err := ycd.ParseFileFormat(a.cfg.FileFormat)
	if err != nil {
		return err
	}

	params := make([]ycd.ResourceParams, 0, len(args))
	for _, id := range args {
		params = append(params, ycd.ResourceParams{
			Operation:  ycd.OperationSave,
			DownloadID: ycd.DownloadID(id),
			FileFormat: format,
		})
	}

	return a.executeResource(ctx, params...)
}

//////////////////////////////////////////////////

func estimateFlags(fset *pflag.FlagSet) {
	fset.String("youtube-api-key", "", "YouTube Data API v3 key")
}

func runEstimate(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: URL", MissingArgument)
	}

	svc, err := ytdata.NewService(ctx, a.cfg.YouTubeAPIKey)
	if err != nil {
		return err
	}

	resolver, err := ytlink.NewResolver(nil)
	if err != nil {
		return err
	}

	est, err := ytdata.NewEstimator(svc, resolver)
	if err != nil {
		return err
	}

	for _, rawURL := range args {
		link, err := ytlink.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("%s: %w", rawURL, err)
		}

		e, err := est.Estimate(ctx, link)
		if err != nil {
			return fmt.Errorf("%s: %w", rawURL, err)
		}

		if err := printJSON(os.Stdout, e); err != nil {
			return err
		}
	}

	return nil
}
