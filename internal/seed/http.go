package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/laurel/pkg/logger"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(url string) (*http.Response, error) {
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	return resp, nil
}

// Send performs a request with a JSON body.
func (c *HTTPClient) Send(ctx context.Context, method, url string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	return resp, nil
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

// submitBallots posts ballots concurrently through the vote endpoint.
func submitBallots(ctx context.Context, cfg *Config, ballots []ballot, stats *Stats) error {
	client := newHTTPClient(cfg.Timeout)
	url := cfg.BaseURL + "/votes"

	var accepted, duplicate, failed, submitted int64

	ballotChan := make(chan ballot, cfg.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range ballotChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				atomic.AddInt64(&submitted, 1)
				switch submitBallot(ctx, client, url, b) {
				case outcomeAccepted:
					atomic.AddInt64(&accepted, 1)
				case outcomeDuplicate:
					atomic.AddInt64(&duplicate, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	go func() {
		defer close(ballotChan)
		for _, b := range ballots {
			select {
			case <-ctx.Done():
				return
			case ballotChan <- b:
			}
		}
	}()

	wg.Wait()

	stats.BallotsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.BallotsAccepted = int(atomic.LoadInt64(&accepted))
	stats.BallotsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.BallotsFailed = int(atomic.LoadInt64(&failed))

	logger.Get().Info(ctx, "ballot submission completed",
		logger.Int("accepted", stats.BallotsAccepted),
		logger.Int("duplicate", stats.BallotsDuplicate),
		logger.Int("failed", stats.BallotsFailed))

	if stats.BallotsFailed > 0 {
		return fmt.Errorf("%d of %d ballots failed", stats.BallotsFailed, stats.BallotsSubmitted)
	}
	return nil
}

type outcome int

const (
	outcomeFailed outcome = iota
	outcomeAccepted
	outcomeDuplicate
)

// submitBallot posts a single ballot and classifies the response.
func submitBallot(ctx context.Context, client *HTTPClient, url string, b ballot) outcome {
	resp, err := client.Send(ctx, http.MethodPost, url, b)
	if err != nil {
		return outcomeFailed
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return outcomeFailed
	}

	switch resp.StatusCode {
	case http.StatusAccepted:
		return outcomeAccepted
	case http.StatusOK:
		var ack ackResponse
		if err := json.Unmarshal(body, &ack); err == nil && ack.Duplicate {
			return outcomeDuplicate
		}
		return outcomeDuplicate
	default:
		return outcomeFailed
	}
}

// submitRubrics puts judge rubrics sequentially; judges are few compared
// to voters, so a worker pool buys nothing here.
func submitRubrics(ctx context.Context, cfg *Config, rubrics []rubric, stats *Stats) error {
	client := newHTTPClient(cfg.Timeout)
	url := cfg.BaseURL + "/judge-scores"

	for _, r := range rubrics {
		resp, err := client.Send(ctx, http.MethodPut, url, r)
		if err != nil {
			return fmt.Errorf("submit rubric: %w", err)
		}
		if _, err := readResponseBody(resp); err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("rubric for %s rejected with status %d", r.NomineeID, resp.StatusCode)
		}
		stats.RubricsSubmitted++
	}

	logger.Get().Info(ctx, "rubric submission completed",
		logger.Int("rubrics", stats.RubricsSubmitted))
	return nil
}
