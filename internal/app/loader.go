package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/temoto/robotstxt"
	"golang.org/x/net/html/charset"
)

// LoadError means the minutes could not be obtained. It aborts the run before any outcome.
type LoadError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *LoadError) Error() string {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return fmt.Sprintf("minutes not found <%s>", e.Source)
	case e.StatusCode != 0:
		return fmt.Sprintf("failed loading minutes from %s: HTTP %d", e.Source, e.StatusCode)
	default:
		return fmt.Sprintf("failed loading minutes from %s: %v", e.Source, e.Err)
	}
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.StatusCode == http.StatusNotFound
}

type Loader struct {
	client        *http.Client
	userAgent     string
	respectRobots bool
	logger        *slog.Logger
}

func NewLoader(client *http.Client, userAgent string, respectRobots bool, logger *slog.Logger) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		client:        client,
		userAgent:     userAgent,
		respectRobots: respectRobots,
		logger:        logger,
	}
}

// Load returns the minutes HTML, read from file when given, else fetched from minutesURL.
func (l *Loader) Load(ctx context.Context, minutesURL, file string) (string, error) {
	if file != "" {
		l.logger.Debug("reading minutes from file instead of URL", "file", file)
		data, err := os.ReadFile(file)
		if err != nil {
			return "", &LoadError{Source: file, Err: err}
		}
		return string(data), nil
	}

	if l.respectRobots {
		if err := l.checkRobots(ctx, minutesURL); err != nil {
			return "", err
		}
	}
	return l.fetch(ctx, minutesURL)
}

func (l *Loader) fetch(ctx context.Context, minutesURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, minutesURL, nil)
	if err != nil {
		return "", &LoadError{Source: minutesURL, Err: err}
	}
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", &LoadError{Source: minutesURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &LoadError{Source: minutesURL, StatusCode: resp.StatusCode}
	}

	utf8Reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		utf8Reader = resp.Body
	}
	body, err := io.ReadAll(utf8Reader)
	if err != nil {
		return "", &LoadError{Source: minutesURL, StatusCode: resp.StatusCode, Err: err}
	}
	return string(body), nil
}

// checkRobots refuses minutes the host asks robots not to fetch.
// An unreachable robots.txt does not prevent loading.
func (l *Loader) checkRobots(ctx context.Context, minutesURL string) error {
	u, err := url.Parse(minutesURL)
	if err != nil || u.Host == "" {
		return &LoadError{Source: minutesURL, Err: fmt.Errorf("invalid minutes URL")}
	}
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return &LoadError{Source: minutesURL, Err: err}
	}
	resp, err := l.client.Do(req)
	if err != nil {
		l.logger.Warn("robots.txt unavailable, ignoring", "url", robotsURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		l.logger.Warn("robots.txt unparsable, ignoring", "url", robotsURL, "error", err)
		return nil
	}
	if !data.TestAgent(u.Path, l.userAgent) {
		return &LoadError{Source: minutesURL, Err: fmt.Errorf("disallowed by %s", robotsURL)}
	}
	return nil
}
