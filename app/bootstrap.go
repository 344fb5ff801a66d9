package app

import (
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"

	"qms-console/internal/api"
	"qms-console/internal/config"
	"qms-console/internal/observability"
	"qms-console/internal/session"
)

const Version = "0.1.0"

type Options struct {
	LoadDotEnv bool
	Quiet      bool
}

// Runtime wires the session controller, token store and API client together.
// Construction order matters: the controller exists first and hands its
// closures to the client, so no module-level auth state is needed.
type Runtime struct {
	Config  config.Config
	Logger  *observability.Logger
	Store   *session.Store
	Session *session.Controller
	Client  *api.Client
	Close   func()

	mu    sync.Mutex
	route string
}

func Build(options Options) (*Runtime, error) {
	if options.LoadDotEnv {
		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := observability.NewLogger()
	if options.Quiet {
		logger = observability.NewSilentLogger()
	}

	if err := observability.InitSentry(cfg.SentryDSN, cfg.Environment, "qms-console@"+Version); err != nil {
		logger.Error("init_sentry_failed", map[string]any{"error": err.Error()})
	}

	runtime := &Runtime{Config: cfg, Logger: logger}

	store := session.NewStore(filepath.Join(cfg.StateDir, "session"))
	controller := session.NewController(store, logger, session.Options{
		Navigate:     runtime.onNavigate,
		CurrentRoute: runtime.CurrentRoute,
	})
	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout(), controller.Hooks(), logger)
	controller.SetClient(client)

	runtime.Store = store
	runtime.Session = controller
	runtime.Client = client
	runtime.Close = observability.FlushSentry
	return runtime, nil
}

// SetRoute records which screen the current command represents, so expiry
// handling can skip the redirect hint when already on the login flow.
func (r *Runtime) SetRoute(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.route = route
}

func (r *Runtime) CurrentRoute() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.route
}

func (r *Runtime) onNavigate(route string) {
	r.Logger.Info("navigate", map[string]any{"route": route})
}
