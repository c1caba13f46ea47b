package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// stealthTemplate hides the most common headless Chrome fingerprints.
// %s is replaced by a JSON array of navigator.languages.
const stealthTemplate = `
(function() {
    'use strict';

    Object.defineProperty(navigator, 'webdriver', {
        get: () => undefined,
        configurable: true
    });
    delete Object.getPrototypeOf(navigator).webdriver;

    // Headless Chrome reports no plugins.
    const pluginNames = ['Chrome PDF Plugin', 'Chrome PDF Viewer', 'Native Client'];
    const pluginArray = Object.create(PluginArray.prototype);
    pluginNames.forEach((name, i) => {
        const plugin = Object.create(Plugin.prototype);
        Object.defineProperties(plugin, {
            name: { value: name, enumerable: true },
            filename: { value: 'internal-' + i, enumerable: true },
            length: { value: 1, enumerable: true }
        });
        pluginArray[i] = plugin;
        pluginArray[name] = plugin;
    });
    Object.defineProperty(pluginArray, 'length', { value: pluginNames.length });
    Object.defineProperty(pluginArray, 'item', { value: (i) => pluginArray[i] || null });
    Object.defineProperty(pluginArray, 'namedItem', { value: (n) => pluginArray[n] || null });
    Object.defineProperty(navigator, 'plugins', {
        get: () => pluginArray,
        configurable: true
    });

    Object.defineProperty(navigator, 'languages', {
        get: () => Object.freeze(%s),
        configurable: true
    });

    if (!window.chrome) {
        Object.defineProperty(window, 'chrome', {
            value: {},
            writable: true,
            enumerable: true,
            configurable: false
        });
    }
    if (!window.chrome.runtime) {
        window.chrome.runtime = {
            get id() { return undefined; },
            connect: function() {},
            sendMessage: function() {}
        };
    }

    const originalQuery = Permissions.prototype.query;
    Permissions.prototype.query = function(parameters) {
        if (parameters.name === 'notifications') {
            return Promise.resolve({ state: Notification.permission });
        }
        return originalQuery.call(this, parameters);
    };

    const getParameterProxyHandler = {
        apply: function(target, ctx, args) {
            const result = Reflect.apply(target, ctx, args);
            if (args[0] === 37445) return 'Intel Inc.';
            if (args[0] === 37446) return 'Intel Iris OpenGL Engine';
            return result;
        }
    };
    try {
        const gp = WebGLRenderingContext.prototype.getParameter;
        WebGLRenderingContext.prototype.getParameter = new Proxy(gp, getParameterProxyHandler);
    } catch (e) {}

    if (navigator.hardwareConcurrency === 0) {
        Object.defineProperty(navigator, 'hardwareConcurrency', {
            get: () => 4,
            configurable: true
        });
    }
})();
`

// StealthScript returns the evasion script advertising the given locale,
// e.g. "en-US" yields navigator.languages == ["en-US", "en"].
func StealthScript(locale string) string {
	langs := Languages(locale)
	encoded, _ := json.Marshal(langs)
	return fmt.Sprintf(stealthTemplate, encoded)
}

// Languages expands a locale into a navigator.languages list.
func Languages(locale string) []string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = "en-US"
	}
	langs := []string{locale}
	if base, _, ok := strings.Cut(locale, "-"); ok && base != "" {
		langs = append(langs, base)
	}
	return langs
}

// StealthExecAllocatorOptions returns Chrome flags that remove automation
// indicators. width and height size the browser window.
func StealthExecAllocatorOptions(width, height int) []chromedp.ExecAllocatorOption {
	return []chromedp.ExecAllocatorOption{
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),

		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("excludeSwitches", "enable-automation"),
		chromedp.Flag("useAutomationExtension", false),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-default-apps", true),

		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-backgrounding-occluded-windows", true),
		chromedp.Flag("disable-renderer-backgrounding", true),

		chromedp.WindowSize(width, height),
	}
}

// InjectStealthScript returns an action that installs the stealth script
// before any page script runs. Call it before navigation.
func InjectStealthScript(locale string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(StealthScript(locale)).Do(ctx)
		return err
	})
}

// CaptureScreenshotOnError captures a screenshot for debugging.
// It returns nil if the capture fails.
func CaptureScreenshotOnError(ctx context.Context) []byte {
	var screenshot []byte
	captureCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := chromedp.Run(captureCtx, chromedp.CaptureScreenshot(&screenshot)); err != nil {
		return nil
	}
	return screenshot
}
