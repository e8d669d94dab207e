package gemp

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client speaks the XML-over-HTTP game protocol: form-encoded requests in,
// XML event batches out. All calls are synchronous with a bounded timeout;
// a failed call leaves no partial state behind.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	// Response pacing bounds. The resolver classifies each response as fast
	// or deliberate; the client owns the actual sleeping.
	fastDelayMax       time.Duration
	deliberateDelayMin time.Duration
	deliberateDelayMax time.Duration
}

// ClientConfig holds the protocol client settings.
type ClientConfig struct {
	BaseURL            string
	RequestTimeout     time.Duration
	FastDelayMax       time.Duration
	DeliberateDelayMin time.Duration
	DeliberateDelayMax time.Duration
}

// NewClient creates a protocol client. The cookie jar carries the login
// session across calls.
func NewClient(cfg ClientConfig, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		logger:             logger,
		fastDelayMax:       cfg.FastDelayMax,
		deliberateDelayMin: cfg.DeliberateDelayMin,
		deliberateDelayMax: cfg.DeliberateDelayMax,
	}
	if c.fastDelayMax <= 0 {
		c.fastDelayMax = 500 * time.Millisecond
	}
	if c.deliberateDelayMin <= 0 {
		c.deliberateDelayMin = 1500 * time.Millisecond
	}
	if c.deliberateDelayMax <= c.deliberateDelayMin {
		c.deliberateDelayMax = c.deliberateDelayMin + 1500*time.Millisecond
	}
	return c, nil
}

// Login authenticates against the server. The session cookie is kept in the
// client's jar.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("login", username)
	form.Set("password", password)

	body, status, err := c.postForm(ctx, "/login", form)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("login rejected: status %d: %s", status, strings.TrimSpace(string(body)))
	}

	if c.logger != nil {
		c.logger.Info("logged in", zap.String("username", username))
	}
	return nil
}

// GameState fetches the full current game state, returning the event batch
// that reconstructs it plus the channel number for subsequent polls.
func (c *Client) GameState(ctx context.Context, gameID string) (*GameUpdate, error) {
	body, status, err := c.get(ctx, "/game/"+url.PathEscape(gameID))
	if err != nil {
		return nil, fmt.Errorf("game state request failed: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("game state request rejected: status %d", status)
	}
	return parseUpdate(body)
}

// Poll fetches incremental events since the given channel number.
func (c *Client) Poll(ctx context.Context, gameID string, channel int) (*GameUpdate, error) {
	form := url.Values{}
	form.Set("channelNumber", strconv.Itoa(channel))

	body, status, err := c.postForm(ctx, "/game/"+url.PathEscape(gameID), form)
	if err != nil {
		return nil, fmt.Errorf("poll request failed: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("poll rejected: status %d", status)
	}
	return parseUpdate(body)
}

// Respond posts a decision response and returns the events it produced.
func (c *Client) Respond(ctx context.Context, gameID string, channel int, decisionID, value string) (*GameUpdate, error) {
	form := url.Values{}
	form.Set("channelNumber", strconv.Itoa(channel))
	form.Set("decisionId", decisionID)
	form.Set("decisionValue", value)

	body, status, err := c.postForm(ctx, "/game/"+url.PathEscape(gameID), form)
	if err != nil {
		return nil, fmt.Errorf("decision post failed: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("decision post rejected: status %d", status)
	}

	if c.logger != nil {
		c.logger.Debug("decision posted",
			zap.String("game_id", gameID),
			zap.String("decision_id", decisionID),
			zap.String("value", value),
		)
	}
	return parseUpdate(body)
}

// Concede requests concession of the game. Best effort: callers on failing
// paths log and move on.
func (c *Client) Concede(ctx context.Context, gameID string) error {
	_, status, err := c.postForm(ctx, "/game/"+url.PathEscape(gameID)+"/concede", url.Values{})
	if err != nil {
		return fmt.Errorf("concede request failed: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("concede rejected: status %d", status)
	}
	return nil
}

// SendChat posts a chat message to the game's chat room.
func (c *Client) SendChat(ctx context.Context, gameID, message string) error {
	form := url.Values{}
	form.Set("message", message)

	_, status, err := c.postForm(ctx, "/chat/"+url.PathEscape(gameID), form)
	if err != nil {
		return fmt.Errorf("chat post failed: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("chat post rejected: status %d", status)
	}
	return nil
}

// Pace sleeps for a human-looking interval before a decision response is
// posted. The core never sleeps; pacing is the transport's concern.
func (c *Client) Pace(ctx context.Context, deliberate bool) {
	var d time.Duration
	if deliberate {
		spread := c.deliberateDelayMax - c.deliberateDelayMin
		d = c.deliberateDelayMin + time.Duration(rand.Int63n(int64(spread)+1))
	} else {
		d = time.Duration(rand.Int63n(int64(c.fastDelayMax) + 1))
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (c *Client) get(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, err
	}
	return c.do(req)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}
