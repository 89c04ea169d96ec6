package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"

	"github.com/murgesku/yggdrasil/featureflag"
	"github.com/murgesku/yggdrasil/octree"
)

func newTestHandler(t *testing.T) (*Handler, *http.ServeMux) {
	t.Helper()

	tree := octree.NewDefault()
	tree.SetValidation(true)

	handler := NewHandler(tree, featureflag.New(nil))

	mux := http.NewServeMux()
	handler.Register(mux)
	return handler, mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestNodeLifecycle(t *testing.T) {
	_, mux := newTestHandler(t)

	rec := doJSON(t, mux, http.MethodPost, "/nodes", nodeAddRequest{
		Box: boxPayload{Min: [3]float32{10, 10, 10}, Max: [3]float32{20, 20, 20}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created nodePayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	rec = doJSON(t, mux, http.MethodPost, "/query", queryRequest{
		Box: &boxPayload{Min: [3]float32{0, 0, 0}, Max: [3]float32{50, 50, 50}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var found []nodePayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Equal(t, 1, len(found))
	require.Equal(t, created.ID, found[0].ID)

	rec = doJSON(t, mux, http.MethodDelete, "/nodes/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, mux, http.MethodDelete, "/nodes/"+created.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNodeMoveIsDeferredToStep(t *testing.T) {
	handler, mux := newTestHandler(t)

	rec := doJSON(t, mux, http.MethodPost, "/nodes", nodeAddRequest{
		Box: boxPayload{Min: [3]float32{10, 10, 10}, Max: [3]float32{20, 20, 20}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created nodePayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, mux, http.MethodPatch, "/nodes/"+created.ID, boxPayload{
		Min: [3]float32{80, 80, 80},
		Max: [3]float32{90, 90, 90},
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	farQuery := queryRequest{
		Box: &boxPayload{Min: [3]float32{75, 75, 75}, Max: [3]float32{95, 95, 95}},
	}

	// The relocation happens on the frame drain, not on the request.
	rec = doJSON(t, mux, http.MethodPost, "/query", farQuery)
	var found []nodePayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Equal(t, 0, len(found))

	handler.Step()

	rec = doJSON(t, mux, http.MethodPost, "/query", farQuery)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Equal(t, 1, len(found))
}

func TestRaycastEndpoint(t *testing.T) {
	_, mux := newTestHandler(t)

	for _, x := range []float32{20, 50} {
		rec := doJSON(t, mux, http.MethodPost, "/nodes", nodeAddRequest{
			Box: boxPayload{
				Min: [3]float32{x - 2, 8, 8},
				Max: [3]float32{x + 2, 12, 12},
			},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, mux, http.MethodPost, "/raycast", raycastRequest{
		Origin:    [3]float32{-10, 10, 10},
		Direction: [3]float32{1, 0, 0},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var hits []raycastHitPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hits))
	require.Equal(t, 2, len(hits))
	require.True(t, hits[0].Distance < hits[1].Distance)

	rec = doJSON(t, mux, http.MethodPost, "/raycast", raycastRequest{
		Origin:    [3]float32{-10, 10, 10},
		Direction: [3]float32{1, 0, 0},
		Single:    true,
	})
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hits))
	require.Equal(t, 1, len(hits))
	require.InDelta(t, 28, hits[0].Distance, 1e-4)
}

func TestQueryRequiresVolume(t *testing.T) {
	_, mux := newTestHandler(t)

	rec := doJSON(t, mux, http.MethodPost, "/query", queryRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDebugEndpoint(t *testing.T) {
	_, mux := newTestHandler(t)

	rec := doJSON(t, mux, http.MethodPost, "/nodes", nodeAddRequest{
		Box: boxPayload{Min: [3]float32{10, 10, 10}, Max: [3]float32{20, 20, 20}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/debug", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var info octree.DebugInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	require.Equal(t, 1, info.NodeCount)
	require.Equal(t, octree.DefaultNumLevels, info.NumLevels)
}
