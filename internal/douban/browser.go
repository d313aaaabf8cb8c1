package douban

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

const browserFetchTimeout = 60 * time.Second

// fetchRenderedPage loads a URL in a headless browser and returns the
// rendered document. A real browser clears the anti-bot checks that block
// plain HTTP clients once Douban decides to throttle an address.
func fetchRenderedPage(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, browserFetchTimeout)
	defer cancelTimeout()

	slog.Debug("Fetching page with headless browser", "url", url)

	var html string
	err := chromedp.Run(timeoutCtx,
		emulation.SetUserAgentOverride(defaultUserAgent),
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("headless fetch of %s failed: %w", url, err)
	}

	return html, nil
}
