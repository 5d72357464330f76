package browser

import (
	"context"
	"time"
	"uiharvest/lib/harvest"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("uiharvest.lib.browser")

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Options struct {
	Headless bool
	// path to the chrome/chromium binary, autodetected when empty
	ExecPath   string
	UserAgent  string
	NavTimeout time.Duration
	OpTimeout  time.Duration
}

// Session drives one browser tab. It implements harvest.Adapter; all
// interactions run strictly sequentially against the single tab.
type Session struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	opts        Options
}

func NewSession(ctx context.Context, opts Options) (*Session, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 30 * time.Second
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = 10 * time.Second
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(opts.UserAgent),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// spawn the browser eagerly so startup failures surface here
	if err := chromedp.Run(tabCtx, chromedp.Navigate("about:blank")); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, err
	}

	return &Session{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		opts:        opts,
	}, nil
}

func (s *Session) Close() {
	s.cancelTab()
	s.cancelAlloc()
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	ctx, span := tracer.Start(ctx, "Navigate")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	runCtx, cancel := opContext(ctx, s.ctx, s.opts.NavTimeout)
	defer cancel()

	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "navigation failed")
		return err
	}
	return nil
}

func (s *Session) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	return s.pollVisibility(ctx, sel, timeout, true)
}

func (s *Session) WaitHidden(ctx context.Context, sel string, timeout time.Duration) error {
	return s.pollVisibility(ctx, sel, timeout, false)
}

func (s *Session) pollVisibility(ctx context.Context, sel string, timeout time.Duration, want bool) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		visible, err := s.IsVisible(ctx, sel)
		if err == nil && visible == want {
			return nil
		}
		if time.Now().After(deadline) {
			state := "visible"
			if !want {
				state = "hidden"
			}
			return harvest.Errorf(harvest.KindAffordanceTimeout,
				"%q did not become %s within %s", sel, state, timeout)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Session) IsVisible(ctx context.Context, sel string) (bool, error) {
	var visible bool
	err := s.eval(ctx, jsCall(jsIsVisible, sel), &visible)
	return visible, err
}

func (s *Session) Click(ctx context.Context, sel string) error {
	var ok bool
	return s.eval(ctx, jsCall(jsClickNth, sel, 0), &ok)
}

func (s *Session) ClickNth(ctx context.Context, sel string, index int) error {
	var ok bool
	return s.eval(ctx, jsCall(jsClickNth, sel, index), &ok)
}

func (s *Session) Count(ctx context.Context, sel string) (int, error) {
	var count int
	err := s.eval(ctx, jsCall(jsCount, sel), &count)
	return count, err
}

func (s *Session) TextNth(ctx context.Context, sel string, index int) (string, error) {
	var text string
	err := s.eval(ctx, jsCall(jsTextNth, sel, index), &text)
	return text, err
}

type ancestorInfo struct {
	Tag   string `json:"tag"`
	Id    string `json:"id"`
	Class string `json:"class"`
	Style string `json:"style"`
}

func (s *Session) AncestorChain(ctx context.Context, sel string, max int) ([]harvest.NodeInfo, error) {
	var chain []ancestorInfo
	err := s.eval(ctx, jsCall(jsAncestors, sel, max), &chain)
	if err != nil {
		return nil, err
	}

	out := make([]harvest.NodeInfo, len(chain))
	for i, a := range chain {
		out[i] = harvest.NodeInfo{
			Tag:   a.Tag,
			Id:    a.Id,
			Class: a.Class,
			Style: a.Style,
		}
	}
	return out, nil
}

func (s *Session) MarkRegion(ctx context.Context, sel string, level int) (string, error) {
	var region string
	err := s.eval(ctx, jsCall(jsMarkRegion, sel, level, regionAttr), &region)
	return region, err
}

func (s *Session) Snapshot(ctx context.Context, sel string) (string, error) {
	return s.SnapshotNth(ctx, sel, 0)
}

// SnapshotNth pulls the subtree in a single evaluate round trip; the
// harvesting itself runs locally over the returned markup.
func (s *Session) SnapshotNth(ctx context.Context, sel string, index int) (string, error) {
	ctx, span := tracer.Start(ctx, "SnapshotNth")
	defer span.End()
	span.SetAttributes(attribute.String("selector", sel), attribute.Int("index", index))

	var html string
	err := s.eval(ctx, jsCall(jsSnapshotNth, sel, index), &html)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot failed")
		return "", err
	}
	span.SetAttributes(attribute.Int("bytes", len(html)))
	return html, nil
}

func (s *Session) eval(ctx context.Context, expr string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := opContext(ctx, s.ctx, s.opts.OpTimeout)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.Evaluate(expr, out,
		func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithReturnByValue(true)
		}))
}

// opContext bounds one tab operation. chromedp only accepts contexts
// descending from the tab context, so cancellation of the caller's
// context is wired across by hand; without it an interrupted run would
// wait out any in-flight evaluate.
func opContext(caller, tab context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(tab, timeout)
	stop := context.AfterFunc(caller, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}
