package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/santaman/internal/metrics"
	"github.com/hitoshi/santaman/internal/middleware"
)

// HealthChecker はヘルスチェックでの死活確認インターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	HTTPMetrics       middleware.HTTPStatusRecorder

	// 運用エンドポイント
	HealthChecker   HealthChecker
	MetricsGatherer prometheus.Gatherer
	Version         string

	// サービス
	UserService       UserServiceInterface
	GroupService      GroupServiceInterface
	AssignmentService AssignmentServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Logging → Metrics → RateLimit(General)
//
// 運用エンドポイント（/version /health /metrics）はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}

	userHandler := NewUserHandler(deps.UserService)
	groupHandler := NewGroupHandler(deps.GroupService)
	assignmentHandler := NewAssignmentHandler(deps.AssignmentService)

	// --- 運用エンドポイント ---

	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "version: %s", deps.Version)
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := deps.HealthChecker.PingContext(req.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- APIエンドポイント ---
	// ミドルウェアスタック: RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// ユーザー登録（登録専用レート制限を追加）
		r.With(deps.RateLimiter.RegistrationMiddleware()).Post("/api/users", userHandler.Register)

		// グループ管理
		r.Route("/api/groups", func(r chi.Router) {
			r.Get("/", groupHandler.ListOpen)
			r.With(deps.RateLimiter.RegistrationMiddleware()).Post("/", groupHandler.Create)

			r.Route("/{name}", func(r chi.Router) {
				r.Delete("/", groupHandler.Delete)
				r.Post("/join", groupHandler.Join)
				r.Get("/members", groupHandler.ListMembers)
				r.Post("/admins", groupHandler.PromoteAdmin)
				r.Post("/admins/revoke", groupHandler.DemoteSelf)

				// クローズとサンタ照会
				r.Post("/close", assignmentHandler.Close)
				r.Get("/recipient", assignmentHandler.GetRecipient)
			})
		})
	})

	return r
}
