package staticdom

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
	"uiharvest/lib/harvest"
	"uiharvest/lib/htmlutil"
	"uiharvest/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("uiharvest.lib.staticdom")

// Client is the read-only harvest.Adapter for server-rendered targets.
// It holds the most recently fetched document in memory; the only
// interaction it can honor is clicking a link, which it turns into a
// fetch of the link's destination. Anything that needs scripting
// (revealing hidden panels, rebuilding lists in place) fails fast so
// the engine's degradation paths take over.
type Client struct {
	http *resty.Client
	base *url.URL
	doc  *goquery.Document
}

type Options struct {
	BaseUrl   string
	UserAgent string
	Timeout   time.Duration
}

func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second * 30
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", opts.UserAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(base.Hostname()))
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(client, "staticdom/http")

	return &Client{
		http: client,
		base: base,
	}, nil
}

func (c *Client) Navigate(ctx context.Context, rawUrl string) error {
	ctx, span := tracer.Start(ctx, "Navigate")
	defer span.End()
	span.SetAttributes(attribute.String("url", rawUrl))

	target, err := url.Parse(rawUrl)
	if err != nil {
		return err
	}
	resolved := c.base.ResolveReference(target)

	res, err := c.http.R().
		SetContext(ctx).
		Get(resolved.String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return err
	}
	if res.StatusCode() >= 400 {
		err := fmt.Errorf("%s responded with status %d", resolved, res.StatusCode())
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad status")
		return err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.String()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return err
	}

	c.doc = doc
	c.base = resolved
	return nil
}

func (c *Client) current() (*goquery.Document, error) {
	if c.doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	return c.doc, nil
}

// WaitVisible cannot actually wait: a static document never changes
// underneath us, so the answer now is the answer at any deadline.
func (c *Client) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	visible, err := c.IsVisible(ctx, sel)
	if err != nil {
		return err
	}
	if !visible {
		return harvest.Errorf(harvest.KindAffordanceTimeout, "%q is not visible", sel)
	}
	return nil
}

func (c *Client) WaitHidden(ctx context.Context, sel string, timeout time.Duration) error {
	visible, err := c.IsVisible(ctx, sel)
	if err != nil {
		return err
	}
	if visible {
		return harvest.Errorf(harvest.KindAffordanceTimeout, "%q is still visible", sel)
	}
	return nil
}

func (c *Client) IsVisible(ctx context.Context, sel string) (bool, error) {
	doc, err := c.current()
	if err != nil {
		return false, err
	}
	node := doc.Find(sel).First()
	if node.Length() == 0 {
		return false, nil
	}
	if _, hidden := node.Attr("hidden"); hidden {
		return false, nil
	}
	style, _ := node.Attr("style")
	if strings.Contains(strings.ReplaceAll(style, " ", ""), "display:none") {
		return false, nil
	}
	return true, nil
}

func (c *Client) Click(ctx context.Context, sel string) error {
	return c.ClickNth(ctx, sel, 0)
}

// ClickNth follows a link's destination. Clicks on anything that isn't
// an anchor with an href are refused rather than silently swallowed.
func (c *Client) ClickNth(ctx context.Context, sel string, index int) error {
	doc, err := c.current()
	if err != nil {
		return err
	}
	node := doc.Find(sel).Eq(index)
	if node.Length() == 0 {
		return fmt.Errorf("no element at index %d of %q", index, sel)
	}

	href, ok := node.Attr("href")
	if !ok || href == "" || strings.HasPrefix(href, "#") {
		return fmt.Errorf("%q is not followable without scripting", sel)
	}
	return c.Navigate(ctx, href)
}

func (c *Client) Count(ctx context.Context, sel string) (int, error) {
	doc, err := c.current()
	if err != nil {
		return 0, err
	}
	return doc.Find(sel).Length(), nil
}

func (c *Client) TextNth(ctx context.Context, sel string, index int) (string, error) {
	doc, err := c.current()
	if err != nil {
		return "", err
	}
	node := doc.Find(sel).Eq(index)
	if node.Length() == 0 {
		return "", fmt.Errorf("no element at index %d of %q", index, sel)
	}
	return htmlutil.Text(node), nil
}

func (c *Client) AncestorChain(ctx context.Context, sel string, max int) ([]harvest.NodeInfo, error) {
	doc, err := c.current()
	if err != nil {
		return nil, err
	}
	node := doc.Find(sel).First()
	if node.Length() == 0 {
		return nil, fmt.Errorf("no element matches %q", sel)
	}

	var chain []harvest.NodeInfo
	for parent := node.Parent(); parent.Length() > 0 && len(chain) < max; parent = parent.Parent() {
		id, _ := parent.Attr("id")
		class, _ := parent.Attr("class")
		style, _ := parent.Attr("style")
		chain = append(chain, harvest.NodeInfo{
			Tag:   goquery.NodeName(parent),
			Id:    id,
			Class: class,
			Style: style,
		})
	}
	return chain, nil
}

const regionAttr = "data-uiharvest-region"

func (c *Client) MarkRegion(ctx context.Context, sel string, level int) (string, error) {
	doc, err := c.current()
	if err != nil {
		return "", err
	}

	doc.Find("[" + regionAttr + "]").RemoveAttr(regionAttr)
	if level < 0 {
		return harvest.DocumentRootSelector, nil
	}

	node := doc.Find(sel).First()
	if node.Length() == 0 {
		return "", fmt.Errorf("no element matches %q", sel)
	}
	for i := 0; i < level; i++ {
		parent := node.Parent()
		if parent.Length() == 0 {
			break
		}
		node = parent
	}
	node.SetAttr(regionAttr, "1")
	return "[" + regionAttr + "]", nil
}

// Snapshot needs no form-state materialization here: whatever control
// state exists was served in the markup already.
func (c *Client) Snapshot(ctx context.Context, sel string) (string, error) {
	return c.SnapshotNth(ctx, sel, 0)
}

func (c *Client) SnapshotNth(ctx context.Context, sel string, index int) (string, error) {
	doc, err := c.current()
	if err != nil {
		return "", err
	}
	node := doc.Find(sel).Eq(index)
	if node.Length() == 0 {
		return "", fmt.Errorf("no element at index %d of %q", index, sel)
	}
	return goquery.OuterHtml(node)
}
