package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/go-tooling/pkg/metrics"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"

	"github.com/murgesku/yggdrasil/featureflag"
	"github.com/murgesku/yggdrasil/geom"
	ygghttp "github.com/murgesku/yggdrasil/http"
	"github.com/murgesku/yggdrasil/octree"
	"github.com/murgesku/yggdrasil/smoketest"
)

var (
	// The Yggdrasil version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "yggdrasil_info",
		Help:        "Yggdrasil information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

type config struct {
	Addr          string        `cli:""        env:"YGGDRASIL_ADDR"           help:"Listening address for client connections."`
	AdminAddr     string        `cli:""        env:"YGGDRASIL_ADMIN_ADDR"     help:"Admin listening address."`
	LogLevel      string        `cli:""        env:"YGGDRASIL_LOG_LEVEL"      help:"Log level (debug|info|warning|error)."`
	LogIndent     bool          `cli:""        env:"YGGDRASIL_LOG_INDENT"     help:"Indent logs."`
	WorldSize     float64       `cli:""        env:"YGGDRASIL_WORLD_SIZE"     help:"Half extent of the indexed world, per axis."`
	NumLevels     int           `cli:""        env:"YGGDRASIL_NUM_LEVELS"     help:"Octree subdivision depth."`
	FrameDuration time.Duration `cli:",hidden" env:"YGGDRASIL_FRAME_DURATION" help:"The duration of a frame, the interval between update queue drains."`
	FeatureFlags  []string      `cli:",hidden" env:"YGGDRASIL_FEATURE_FLAGS"  help:"Comma separated feature flags."`
	Version       bool          `cli:""        env:"-"                        help:"Show version."`
	Help          bool          `cli:""        env:"-"                        help:"Show help."`
}

func main() {
	conf := config{
		Addr:          ":4600",
		AdminAddr:     ":18290",
		LogLevel:      logs.InfoLevel.String(),
		WorldSize:     octree.DefaultWorldSize,
		NumLevels:     octree.DefaultNumLevels,
		FrameDuration: time.Millisecond * 15,
	}

	// set the information gauge to 1, useful for SUM query
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Starts the Yggdrasil spatial index server.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := validateConfig(conf); err != nil {
		logs.Fatal(err)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	worldSize := float32(conf.WorldSize)
	tree := octree.New(geom.NewBoundingBox(
		mgl32.Vec3{-worldSize, -worldSize, -worldSize},
		mgl32.Vec3{worldSize, worldSize, worldSize},
	), conf.NumLevels)

	flags := featureflag.New(conf.FeatureFlags)
	flags.IfSet(featureflag.FlagTreeValidation, func() {
		tree.SetValidation(true)
	})

	handler := ygghttp.NewHandler(tree, flags)
	go handler.StartFrameLoop(ctx, conf.FrameDuration)

	var service http.ServeMux
	handler.Register(&service)
	service.HandleFunc("/health", ygghttp.HandleHealthCheck)
	service.HandleFunc("/version", ygghttp.HandleVersion(version))

	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/health", ygghttp.HandleHealthCheck)
	admin.Handle("/smoke-test", smoketest.HandleSmokeTest(ctx, smoketest.Options{
		SendResult: func(_ context.Context, res smoketest.Results) error {
			logs.WithTag("endpoint", res.Endpoint).
				WithTag("status", res.Status).
				WithTag("latency_millisec", res.LatencyMilliSec).
				Info("smoke test completed")
			return nil
		},
	}))
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	admin.HandleFunc("/debug/pprof/trace", pprof.Trace)
	admin.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))

	logs.WithTag("version", version).
		WithTag("log_level", conf.LogLevel).
		WithTag("world_size", conf.WorldSize).
		WithTag("num_levels", conf.NumLevels).
		Info("starting yggdrasil server")

	ygghttp.ListenAndServe(ctx,
		&http.Server{Addr: conf.Addr, Handler: metrics.HTTPHandler(&service,
			ygghttp.MetricsPathFormatter)},
		&http.Server{Addr: conf.AdminAddr, Handler: &admin},
	)
}

func validateConfig(conf config) error {
	if conf.WorldSize <= 0 {
		return errors.New("world size must be positive").
			WithTag("world_size", conf.WorldSize)
	}
	if conf.FrameDuration <= 0 {
		return errors.New("frame duration must be positive").
			WithTag("frame_duration", conf.FrameDuration)
	}
	return nil
}
