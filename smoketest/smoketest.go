package smoketest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/segmentio/encoding/json"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Request triggers a smoke test against the given server endpoint.
type Request struct {
	Endpoint string        `json:"endpoint"`
	Timeout  time.Duration `json:"timeout"`
}

// Results reports the outcome of a smoke test run.
type Results struct {
	Endpoint        string  `json:"endpoint"`
	LatencyMilliSec float64 `json:"latency_millisec"`
	Status          Status  `json:"status"`
	Error           string  `json:"error,omitempty"`
}

type Options struct {
	SendResult func(context.Context, Results) error
}

type testCtxKey string

var testCtxKeyValue testCtxKey = "test-context"

type testContext struct {
	context.Context
	Cancel func()
}

// HandleSmokeTest launches an asynchronous smoke test run and reports the
// outcome through opts.SendResult.
func HandleSmokeTest(ctx context.Context, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "reading body failed", http.StatusInternalServerError)
			return
		}

		var req Request
		if err := json.Unmarshal(b, &req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		go func() {
			defer func() {
				// if context is of testContext
				// cancel context on exit to signal function exited
				// this is used for testing
				if tctx := ctx.Value(testCtxKeyValue); tctx != nil {
					testCtx := tctx.(testContext)
					if testCtx.Cancel != nil {
						testCtx.Cancel()
					}
				}
			}()

			res, err := Run(ctx, RunOptions{
				Endpoint: req.Endpoint,
				Timeout:  req.Timeout,
			})
			if err != nil {
				logs.Warn(err)
			}

			if err := opts.SendResult(ctx, res); err != nil {
				logs.WithTag("endpoint", req.Endpoint).
					Warn(errors.New("sending smoke test result failed").Wrap(err))
			}
		}()

		w.WriteHeader(http.StatusOK)
	}
}

type RunOptions struct {
	Endpoint string
	Timeout  time.Duration
}

// Run exercises the full node lifecycle against a running server: add a
// node, find it with a volume query, hit it with a raycast, delete it.
func Run(ctx context.Context, opts RunOptions) (Results, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second * 10
	}
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	res := Results{
		Endpoint: opts.Endpoint,
		Status:   StatusFailed,
	}

	start := time.Now()
	id, err := addNode(ctx, opts.Endpoint)
	if err != nil {
		res.Error = err.Error()
		return res, err
	}
	res.LatencyMilliSec = float64(time.Since(start).Microseconds()) / 1000

	steps := []func() error{
		func() error { return queryNode(ctx, opts.Endpoint, id) },
		func() error { return raycastNode(ctx, opts.Endpoint, id) },
		func() error { return deleteNode(ctx, opts.Endpoint, id) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			res.Error = err.Error()
			return res, err
		}
	}

	res.Status = StatusSuccess
	return res, nil
}

func addNode(ctx context.Context, endpoint string) (string, error) {
	body := map[string]any{
		"box": map[string]any{
			"min": [3]float32{1, 1, 1},
			"max": [3]float32{2, 2, 2},
		},
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := call(ctx, http.MethodPost, endpoint+"/nodes", body, http.StatusCreated, &out); err != nil {
		return "", errors.New("adding smoke test node failed").Wrap(err)
	}
	return out.ID, nil
}

func queryNode(ctx context.Context, endpoint, id string) error {
	body := map[string]any{
		"box": map[string]any{
			"min": [3]float32{0, 0, 0},
			"max": [3]float32{3, 3, 3},
		},
	}

	var found []struct {
		ID string `json:"id"`
	}
	if err := call(ctx, http.MethodPost, endpoint+"/query", body, http.StatusOK, &found); err != nil {
		return errors.New("querying smoke test node failed").Wrap(err)
	}
	for _, n := range found {
		if n.ID == id {
			return nil
		}
	}
	return errors.New("smoke test node is missing from query results").
		WithTag("node_id", id)
}

func raycastNode(ctx context.Context, endpoint, id string) error {
	body := map[string]any{
		"origin":    [3]float32{-1, 1.5, 1.5},
		"direction": [3]float32{1, 0, 0},
	}

	var hits []struct {
		NodeID string `json:"node_id"`
	}
	if err := call(ctx, http.MethodPost, endpoint+"/raycast", body, http.StatusOK, &hits); err != nil {
		return errors.New("raycasting smoke test node failed").Wrap(err)
	}
	for _, hit := range hits {
		if hit.NodeID == id {
			return nil
		}
	}
	return errors.New("smoke test node is missing from raycast hits").
		WithTag("node_id", id)
}

func deleteNode(ctx context.Context, endpoint, id string) error {
	if err := call(ctx, http.MethodDelete, endpoint+"/nodes/"+id, nil, http.StatusNoContent, nil); err != nil {
		return errors.New("deleting smoke test node failed").Wrap(err)
	}
	return nil
}

func call(ctx context.Context, method, url string, in any, wantStatus int, out any) error {
	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.New("encoding request failed").Wrap(err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return errors.New("creating request failed").Wrap(err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.New("sending request failed").Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return errors.New("unexpected response status").
			WithTag("status", resp.StatusCode).
			WithTag("want_status", wantStatus)
	}

	if out == nil {
		return nil
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.New("reading response failed").Wrap(err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return errors.New("decoding response failed").Wrap(err)
	}
	return nil
}
