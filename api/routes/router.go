package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raedalotaibi/mashary-backend/api/controllers"
	"github.com/raedalotaibi/mashary-backend/api/middleware"
	"github.com/raedalotaibi/mashary-backend/internal/activity"
	"github.com/raedalotaibi/mashary-backend/internal/notifications"
	"github.com/raedalotaibi/mashary-backend/internal/projects"
	"github.com/raedalotaibi/mashary-backend/pkg/config"
	"github.com/raedalotaibi/mashary-backend/pkg/logger"
	"github.com/raedalotaibi/mashary-backend/pkg/metrics"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	HTTPMetrics  *metrics.HTTPMetrics
	MetricsHTTP  http.Handler
	ReadyPingers map[string]controllers.Pinger

	Projects      projects.Service
	Manpower      projects.ManpowerService
	Notifications notifications.Service
	Activity      activity.Recorder
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.ReadyPingers))
	})

	if deps.MetricsHTTP != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHTTP)
	} else {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Config.JWT, deps.Logger))

		r.Route("/project", func(r chi.Router) {
			r.Post("/create", controllers.CreateProject(deps.Projects, deps.Logger))
			r.Get("/draft", controllers.GetDraft(deps.Projects, deps.Logger))
			r.Get("/", controllers.ListProjects(deps.Projects, deps.Logger))

			r.Put("/associating-vehicles/{id}", controllers.AssociateVehicles(deps.Projects, deps.Logger))
			r.Put("/associating-manpower/{id}", controllers.SetManpowerParams(deps.Projects, deps.Logger))
			r.Put("/associating-materials/{id}", controllers.AssociateMaterials(deps.Projects, deps.Logger))
			r.Put("/associating-asset/{id}", controllers.AssociateAssets(deps.Projects, deps.Logger))
			r.Put("/complete-project-creation/{id}", controllers.CompleteProject(deps.Projects, deps.Logger))

			r.Route("/manpower", func(r chi.Router) {
				r.Post("/{id}", controllers.AddManpower(deps.Manpower, deps.Logger))
				r.Put("/{id}/{manpowerId}", controllers.UpdateManpower(deps.Manpower, deps.Logger))
				r.Delete("/{id}/{manpowerId}", controllers.RemoveManpower(deps.Manpower, deps.Logger))
			})

			r.Get("/{id}", controllers.GetProject(deps.Projects, deps.Logger))
			r.Delete("/{id}", controllers.DeleteProject(deps.Projects, deps.Logger))
			r.Get("/{id}/activity", controllers.ProjectActivity(deps.Projects, deps.Activity, deps.Logger))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, deps.Logger))
			r.Get("/unread-count", controllers.UnreadNotificationCount(deps.Notifications, deps.Logger))
			r.Post("/{id}/read", controllers.MarkNotificationRead(deps.Notifications, deps.Logger))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, deps.Logger))
		})
	})

	return r
}
