package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"

	"github.com/murgesku/yggdrasil/featureflag"
	"github.com/murgesku/yggdrasil/geom"
	"github.com/murgesku/yggdrasil/octree"
)

// Handler exposes an octree over HTTP and WebSocket. The octree itself is
// single-threaded; the handler's mutex serializes every access, and Step
// drains the update queue once per frame.
type Handler struct {
	mutex sync.Mutex
	tree  *octree.Octree
	nodes map[uuid.UUID]*octree.Node
	flags featureflag.FeatureFlag
}

func NewHandler(tree *octree.Octree, flags featureflag.FeatureFlag) *Handler {
	return &Handler{
		tree:  tree,
		nodes: make(map[uuid.UUID]*octree.Node),
		flags: flags,
	}
}

// Register mounts the handler routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /nodes", h.handleNodeAdd)
	mux.HandleFunc("DELETE /nodes/{id}", h.handleNodeDelete)
	mux.HandleFunc("PATCH /nodes/{id}", h.handleNodeMove)
	mux.HandleFunc("POST /query", h.handleQuery)
	mux.HandleFunc("POST /raycast", h.handleRaycast)
	mux.HandleFunc("GET /debug", h.handleDebug)
	mux.Handle("/sync", websocket.Server{Handler: h.handleSync})
}

// Step drains the octree update queue. Called once per frame.
func (h *Handler) Step() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.tree.Update()
}

// StartFrameLoop calls Step at the given interval until the context is
// canceled.
func (h *Handler) StartFrameLoop(ctx context.Context, frameDuration time.Duration) {
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Step()
		}
	}
}

type boxPayload struct {
	Min [3]float32 `json:"min"`
	Max [3]float32 `json:"max"`
}

func (p boxPayload) boundingBox() geom.BoundingBox {
	return geom.NewBoundingBox(mgl32.Vec3(p.Min), mgl32.Vec3(p.Max))
}

func boxPayloadFrom(box geom.BoundingBox) boxPayload {
	return boxPayload{Min: box.Min, Max: box.Max}
}

type spherePayload struct {
	Center [3]float32 `json:"center"`
	Radius float32    `json:"radius"`
}

type nodePayload struct {
	ID    string     `json:"id"`
	Box   boxPayload `json:"box"`
	Flags uint32     `json:"flags"`
}

func nodePayloadFrom(n *octree.Node) nodePayload {
	return nodePayload{
		ID:    n.ID.String(),
		Box:   boxPayloadFrom(n.WorldBoundingBox()),
		Flags: uint32(n.Flags()),
	}
}

type nodeAddRequest struct {
	Box   boxPayload `json:"box"`
	Flags uint32     `json:"flags"`
}

func (h *Handler) handleNodeAdd(w http.ResponseWriter, r *http.Request) {
	var req nodeAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.replyError(w, http.StatusBadRequest, "node-add", errors.New("decoding node add request failed").Wrap(err))
		return
	}

	flags := octree.NodeFlag(req.Flags)
	if flags == 0 {
		flags = octree.FlagEnabled | octree.FlagGeometry
	}

	node := octree.NewNode(flags, req.Box.boundingBox())

	h.mutex.Lock()
	h.nodes[node.ID] = node
	h.tree.InsertNode(node)
	h.mutex.Unlock()

	h.reply(w, http.StatusCreated, "node-add", nodePayloadFrom(node))
}

func (h *Handler) handleNodeDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.replyError(w, http.StatusBadRequest, "node-delete", errors.New("parsing node id failed").Wrap(err))
		return
	}

	h.mutex.Lock()
	node, ok := h.nodes[id]
	if ok {
		h.tree.RemoveNode(node)
		delete(h.nodes, id)
	}
	h.mutex.Unlock()

	if !ok {
		h.replyError(w, http.StatusNotFound, "node-delete", errors.New("node is not tracked").
			WithTag("node_id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleNodeMove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.replyError(w, http.StatusBadRequest, "node-move", errors.New("parsing node id failed").Wrap(err))
		return
	}

	var box boxPayload
	if err := json.NewDecoder(r.Body).Decode(&box); err != nil {
		h.replyError(w, http.StatusBadRequest, "node-move", errors.New("decoding node move request failed").Wrap(err))
		return
	}

	h.mutex.Lock()
	node, ok := h.nodes[id]
	if ok {
		node.SetWorldBoundingBox(box.boundingBox())
		h.tree.QueueUpdate(node)
	}
	h.mutex.Unlock()

	if !ok {
		h.replyError(w, http.StatusNotFound, "node-move", errors.New("node is not tracked").
			WithTag("node_id", id))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type queryRequest struct {
	Box    *boxPayload    `json:"box,omitempty"`
	Sphere *spherePayload `json:"sphere,omitempty"`
	// Optional view-projection matrix, column-major, for frustum queries.
	ViewProjection *[16]float32 `json:"view_projection,omitempty"`
	Flags          uint32       `json:"flags"`
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.replyError(w, http.StatusBadRequest, "query", errors.New("decoding query request failed").Wrap(err))
		return
	}

	var volume octree.Volume
	switch {
	case req.Box != nil:
		volume = req.Box.boundingBox()
	case req.Sphere != nil:
		volume = geom.Sphere{Center: mgl32.Vec3(req.Sphere.Center), Radius: req.Sphere.Radius}
	case req.ViewProjection != nil:
		volume = geom.NewFrustumFromMatrix(mgl32.Mat4(*req.ViewProjection))
	default:
		h.replyError(w, http.StatusBadRequest, "query", errors.New("query volume is missing"))
		return
	}

	flags := octree.NodeFlag(req.Flags)
	if flags == 0 {
		flags = octree.AnyFlags
	}

	h.mutex.Lock()
	found := h.tree.FindNodes(volume, flags)
	h.mutex.Unlock()

	payload := make([]nodePayload, len(found))
	for i, node := range found {
		payload[i] = nodePayloadFrom(node)
	}

	h.flags.IfNotSet(featureflag.FlagDisableQueryMetrics, func() {
		instrumentQueryLatency("query", start)
	})
	h.reply(w, http.StatusOK, "query", payload)
}

type raycastRequest struct {
	Origin      [3]float32 `json:"origin"`
	Direction   [3]float32 `json:"direction"`
	MaxDistance float32    `json:"max_distance"`
	Flags       uint32     `json:"flags"`
	Single      bool       `json:"single"`
}

type raycastHitPayload struct {
	Position [3]float32 `json:"position"`
	Normal   [3]float32 `json:"normal"`
	Distance float32    `json:"distance"`
	NodeID   string     `json:"node_id"`
}

func (h *Handler) handleRaycast(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req raycastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.replyError(w, http.StatusBadRequest, "raycast", errors.New("decoding raycast request failed").Wrap(err))
		return
	}

	ray := geom.NewRay(mgl32.Vec3(req.Origin), mgl32.Vec3(req.Direction))

	maxDistance := req.MaxDistance
	if maxDistance <= 0 {
		maxDistance = geom.Unbounded
	}

	flags := octree.NodeFlag(req.Flags)
	if flags == 0 {
		flags = octree.AnyFlags
	}

	var hits []octree.RaycastResult
	h.mutex.Lock()
	if req.Single {
		if hit, ok := h.tree.RaycastSingle(ray, flags, maxDistance); ok {
			hits = []octree.RaycastResult{hit}
		}
	} else {
		hits = h.tree.Raycast(ray, flags, maxDistance)
	}
	h.mutex.Unlock()

	payload := make([]raycastHitPayload, len(hits))
	for i, hit := range hits {
		payload[i] = raycastHitPayload{
			Position: hit.Position,
			Normal:   hit.Normal,
			Distance: hit.Distance,
			NodeID:   hit.Node.ID.String(),
		}
	}

	h.flags.IfNotSet(featureflag.FlagDisableQueryMetrics, func() {
		instrumentQueryLatency("raycast", start)
	})
	h.reply(w, http.StatusOK, "raycast", payload)
}

func (h *Handler) handleDebug(w http.ResponseWriter, r *http.Request) {
	h.mutex.Lock()
	info := h.tree.DebugInfo()
	h.mutex.Unlock()

	h.reply(w, http.StatusOK, "debug", info)
}

type syncMessage struct {
	ID  string     `json:"id"`
	Box boxPayload `json:"box"`
}

type syncAck struct {
	ID      string `json:"id"`
	Tracked bool   `json:"tracked"`
}

// handleSync receives a stream of node box updates and queues them for the
// next frame drain.
func (h *Handler) handleSync(ws *websocket.Conn) {
	defer ws.Close()

	instrumentSyncClientConnect()
	defer instrumentSyncClientDisconnect()

	for {
		var msg syncMessage
		if err := websocket.JSON.Receive(ws, &msg); err != nil {
			return
		}

		id, err := uuid.Parse(msg.ID)
		if err != nil {
			logs.WithTag("node_id", msg.ID).
				Warn("skipping sync message with a malformed node id")
			continue
		}

		tracked := false
		h.mutex.Lock()
		if node, ok := h.nodes[id]; ok {
			node.SetWorldBoundingBox(msg.Box.boundingBox())
			h.tree.QueueUpdate(node)
			tracked = true
		}
		h.mutex.Unlock()

		h.flags.IfNotSet(featureflag.FlagDisableSyncBroadcast, func() {
			if err := websocket.JSON.Send(ws, syncAck{ID: msg.ID, Tracked: tracked}); err != nil {
				logs.Warn(errors.New("sending sync ack failed").Wrap(err))
			}
		})
	}
}

func (h *Handler) reply(w http.ResponseWriter, status int, endpoint string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.replyError(w, http.StatusInternalServerError, endpoint, errors.New("encoding response failed").Wrap(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func (h *Handler) replyError(w http.ResponseWriter, status int, endpoint string, err error) {
	logs.WithTag("endpoint", endpoint).Warn(err)
	instrumentRequestError(endpoint, err)
	http.Error(w, err.Error(), status)
}
