package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "tgosint/backend/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// BotAPILookup resolves user ids through the Telegram Bot API getChat method.
// Requests are throttled so a large batch stays under the API flood limits.
type BotAPILookup struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	RateLimiter *rate.Limiter
	logger      *zap.Logger
}

type getChatResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
	Result      *struct {
		ID       int64  `json:"id"`
		Type     string `json:"type"`
		Username string `json:"username"`
	} `json:"result,omitempty"`
}

// NewBotAPILookup creates a lookup against baseURL (normally https://api.telegram.org)
func NewBotAPILookup(baseURL, token string, requestsPerSecond float64, logger *zap.Logger) *BotAPILookup {
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &BotAPILookup{
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		RateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		logger:      logger,
	}
}

// LookupHandle implements Lookup
func (b *BotAPILookup) LookupHandle(ctx context.Context, userID int64) (string, error) {
	if err := b.RateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/getChat?%s", b.baseURL, b.token, url.Values{
		"chat_id": []string{strconv.FormatInt(userID, 10)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		// The request URL embeds the bot token; never log or return it
		if urlErr, ok := err.(*url.Error); ok {
			err = urlErr.Err
		}
		return "", fmt.Errorf("getChat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read getChat response: %w", err)
	}

	var payload getChatResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("failed to decode getChat response (status %d): %w", resp.StatusCode, err)
	}

	if !payload.OK {
		code := payload.ErrorCode
		if code == 0 {
			code = resp.StatusCode
		}
		return "", apperrors.NewLookupRejected(userID, code, payload.Description)
	}
	if payload.Result == nil {
		return "", nil
	}

	b.logger.Debug("Resolved user via Bot API",
		zap.Int64("user_id", userID),
		zap.Bool("has_username", payload.Result.Username != ""),
	)
	return payload.Result.Username, nil
}
