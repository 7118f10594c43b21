// Package runner drives the per-URL summarization loop of the CLI.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"mvdan.cc/xurls/v2"

	"pagebrief/internal/domain"
	"pagebrief/internal/summarizer"
)

const separatorWidth = 70

// defaultURLs is summarized when no URL argument is given.
var defaultURLs = []string{
	"https://edwarddonner.com",
	"https://anthropic.com",
	"https://cnn.com",
}

// EndpointPinger verifies the inference endpoint is reachable before any page
// is fetched.
type EndpointPinger interface {
	Ping(ctx context.Context) error
}

type Runner struct {
	pinger     EndpointPinger
	summarizer summarizer.Summarizer
	baseURL    string
	model      string
	out        io.Writer
	log        *slog.Logger
}

func New(
	pinger EndpointPinger,
	s summarizer.Summarizer,
	baseURL string,
	model string,
	out io.Writer,
	log *slog.Logger,
) *Runner {
	return &Runner{
		pinger:     pinger,
		summarizer: s,
		baseURL:    baseURL,
		model:      model,
		out:        out,
		log:        log,
	}
}

// Run resolves the target URLs, checks the endpoint, and summarizes each URL
// in input order. It returns the process exit code: 1 when the endpoint is
// unreachable, 0 otherwise — a failed URL is reported but does not abort the
// run.
func (r *Runner) Run(ctx context.Context, args []string) int {
	targets := r.resolveTargets(ctx, args)

	if err := r.pinger.Ping(ctx); err != nil {
		r.log.ErrorContext(ctx, "Inference endpoint is unreachable",
			"error", err,
			"baseURL", r.baseURL,
			"model", r.model)

		fmt.Fprintf(r.out, "cannot reach inference endpoint at %s: %v\n\n", r.baseURL, err)
		fmt.Fprintln(r.out, "Make sure Ollama is running:")
		fmt.Fprintf(r.out, "  1. Visit %s to check if it responds\n", r.baseURL)
		fmt.Fprintln(r.out, "  2. If not, run 'ollama serve' in a terminal")
		fmt.Fprintf(r.out, "  3. Pull the model with 'ollama pull %s'\n", r.model)

		return 1
	}

	fmt.Fprintf(r.out, "Connected to %s using model %s\n", r.baseURL, r.model)

	separator := strings.Repeat("=", separatorWidth)

	results := make([]domain.Result, 0, len(targets))
	for _, target := range targets {
		fmt.Fprintln(r.out, separator)

		summary, err := r.summarizer.Summarize(ctx, target)
		result := domain.Result{URL: target, Summary: summary, Err: err}
		results = append(results, result)

		if result.Failed() {
			r.log.ErrorContext(ctx, "Failed to summarize URL",
				"error", err,
				"url", target)

			fmt.Fprintf(r.out, "error summarizing %s: %v\n", target, err)
			continue
		}

		fmt.Fprintf(r.out, "\nSummary of %s:\n\n%s\n\n", target, summary)
	}

	var failed int
	for _, result := range results {
		if result.Failed() {
			failed++
		}
	}

	fmt.Fprintln(r.out, separator)
	fmt.Fprintf(r.out, "Done: %d summarized, %d failed.\n", len(results)-failed, failed)

	return 0
}

// resolveTargets picks the URL list: the sole argument when one is given,
// otherwise the built-in defaults. An argument is matched against a strict
// URL pattern so surrounding text or quoting does not end up in the request.
func (r *Runner) resolveTargets(ctx context.Context, args []string) []string {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(r.out, "No URL provided. Summarizing default websites...")

		return defaultURLs
	}

	arg := strings.TrimSpace(args[0])

	httpURLRe, err := xurls.StrictMatchingScheme("https?://")
	if err != nil {
		return []string{arg}
	}

	if match := httpURLRe.FindString(arg); match != "" {
		return []string{match}
	}

	r.log.WarnContext(ctx, "Argument does not look like an absolute http(s) URL",
		"arg", arg)

	return []string{arg}
}
