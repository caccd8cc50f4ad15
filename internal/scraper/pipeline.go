package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-vacancy-swipe/internal/ai"
	"go-vacancy-swipe/internal/browser"
	"go-vacancy-swipe/internal/filter"
	"go-vacancy-swipe/internal/logging"
	"go-vacancy-swipe/internal/models"
	"go-vacancy-swipe/internal/reporter"
	"go-vacancy-swipe/utils"
)

const (
	tagNavigation = "Navigation Error"
	tagZeroLinks  = "Zero Vacancies Found"
	tagCritical   = "Critical Browser Error"

	untitled = "Vacancy"
)

type Options struct {
	SearchTimeout time.Duration
	SearchSettle  time.Duration
	DetailTimeout time.Duration
	DetailSettle  time.Duration
	RequestDelay  time.Duration
	MaxLinks      int
	ProgressEvery int
}

func DefaultOptions() Options {
	return Options{
		SearchTimeout: 45 * time.Second,
		SearchSettle:  5 * time.Second,
		DetailTimeout: 20 * time.Second,
		DetailSettle:  time.Second,
		RequestDelay:  2 * time.Second,
		MaxLinks:      filter.DefaultMaxLinks,
		ProgressEvery: 2,
	}
}

// Pipeline turns a search URL into classified candidates: it opens the search
// page, extracts detail links and visits them one at a time.
type Pipeline struct {
	fetcher    browser.Fetcher
	classifier ai.Classifier
	notifier   reporter.Notifier
	shots      *utils.ScreenShotDebugger
	opts       Options
	log        *logging.Logger
}

// NewPipeline wires a pipeline. shots may be nil to skip writing captures to
// disk; a nil notifier only logs.
func NewPipeline(fetcher browser.Fetcher, classifier ai.Classifier, notifier reporter.Notifier, shots *utils.ScreenShotDebugger, opts Options, log *logging.Logger) *Pipeline {
	if opts.MaxLinks <= 0 || opts.MaxLinks > filter.DefaultMaxLinks {
		opts.MaxLinks = filter.DefaultMaxLinks
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 1
	}
	if notifier == nil {
		notifier = reporter.NewTelegramReporter(nil, 0, log)
	}
	return &Pipeline{
		fetcher:    fetcher,
		classifier: classifier,
		notifier:   notifier,
		shots:      shots,
		opts:       opts,
		log:        log,
	}
}

// Run executes one search. The returned Result is never nil; on error its
// Outcome tells which stage failed and Candidates holds what was collected.
func (p *Pipeline) Run(ctx context.Context, req Request, progress ProgressFunc) (res *Result, err error) {
	runID := uuid.NewString()
	log := p.log.With("run", runID[:8])
	res = &Result{}
	if progress == nil {
		progress = func(Progress) {}
	}

	defer func() {
		if r := recover(); r != nil {
			perr := fmt.Errorf("panic: %v", r)
			log.Error("💥 Pipeline panicked", "err", perr)
			p.notifier.Report(context.WithoutCancel(ctx), tagCritical, perr)
			res.Outcome = OutcomeFailed
			err = fmt.Errorf("%w: %w", ErrUnexpected, perr)
		}
	}()

	log.Info("🚀 Starting search", "url", req.URL)
	progress(Progress{Stage: StageNavigating})

	sess, err := p.fetcher.Open(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			res.Outcome = OutcomeCancelled
			return res, ctxErr
		}
		p.notifier.Report(ctx, tagCritical, err)
		res.Outcome = OutcomeFailed
		return res, fmt.Errorf("%w: open browser session: %w", ErrUnexpected, err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Warn("⚠️ Failed to close browser session", "err", cerr)
		}
	}()

	page, err := sess.Navigate(ctx, req.URL, browser.FetchOptions{
		Timeout: p.opts.SearchTimeout,
		Settle:  p.opts.SearchSettle,
		Scroll:  true,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			res.Outcome = OutcomeCancelled
			return res, ctxErr
		}
		log.Warn("❌ Could not open search page", "err", err)
		p.notifier.Report(ctx, tagNavigation, err)
		res.Outcome = OutcomeSiteUnreachable
		return res, fmt.Errorf("%w: %w", ErrSiteUnreachable, err)
	}

	links := filter.ExtractDetailLinks(page.Links, p.opts.MaxLinks)
	res.LinksFound = len(links)
	if len(links) == 0 {
		res.Outcome = OutcomeNoLinksFound
		res.Screenshot = p.capture(ctx, log, sess, page)
		return res, fmt.Errorf("%w on %s (page title %q)", ErrNoLinksFound, req.URL, page.Title)
	}

	log.Info("🔗 Detail links found", "count", len(links))
	progress(Progress{Stage: StageLinksFound, Total: len(links)})

	for i, link := range links {
		if err := browser.Pause(ctx, p.opts.RequestDelay); err != nil {
			res.Outcome = OutcomeCancelled
			return res, err
		}

		if cand, ok := p.check(ctx, log, sess, link, req.Filters); ok {
			res.Candidates = append(res.Candidates, cand)
		}
		if err := ctx.Err(); err != nil {
			res.Outcome = OutcomeCancelled
			return res, err
		}

		processed := i + 1
		if processed%p.opts.ProgressEvery == 0 || processed == len(links) {
			progress(Progress{Stage: StageChecking, Processed: processed, Total: len(links)})
		}
	}

	res.Outcome = OutcomeCompleted
	log.Info("✅ Search finished", "links", len(links), "candidates", len(res.Candidates))
	return res, nil
}

// check fetches and classifies one listing. Failures are logged and skipped.
func (p *Pipeline) check(ctx context.Context, log *logging.Logger, sess browser.Session, link string, filters models.Filters) (models.Candidate, bool) {
	detail, err := sess.Fetch(ctx, link, browser.FetchOptions{
		Timeout: p.opts.DetailTimeout,
		Settle:  p.opts.DetailSettle,
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Warn("⚠️ Skipping vacancy", "url", link, "err", err)
		}
		return models.Candidate{}, false
	}

	verdict := p.classifier.Classify(ctx, detail.Text, filters)
	if !verdict.Valid {
		log.Debug("🚫 Rejected", "url", link, "reason", verdict.Reason)
		return models.Candidate{}, false
	}

	title := strings.TrimSpace(detail.Title)
	if title == "" {
		title = untitled
	}
	log.Info("🎯 Match", "title", title, "url", link)
	return models.Candidate{
		Title:   title,
		URL:     link,
		Summary: verdict.Summary.Format(),
	}, true
}

// capture grabs the search page for operator review. It returns nil when the
// browser could not take a screenshot.
func (p *Pipeline) capture(ctx context.Context, log *logging.Logger, sess browser.Session, page *browser.Page) []byte {
	cause := fmt.Errorf("%w: %s (title %q)", ErrNoLinksFound, page.URL, page.Title)

	png, err := sess.Screenshot()
	if err != nil {
		log.Warn("⚠️ Could not capture search page", "err", err)
		p.notifier.Report(ctx, tagZeroLinks, cause)
		return nil
	}

	if p.shots != nil {
		_, _ = p.shots.Save("zero-links", png, "Zero vacancies found")
	}
	p.notifier.ReportPhoto(ctx, tagZeroLinks, cause, png)
	return png
}
