package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/lecturelens-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lecturelens-backend/internal/http/middleware"
	"github.com/yungbote/lecturelens-backend/internal/observability"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	Tracing        bool
	Metrics        *observability.Metrics

	AnalysisHandler *httpH.AnalysisHandler
	RubricHandler   *httpH.RubricHandler
	SchoolHandler   *httpH.SchoolHandler
	UserHandler     *httpH.UserHandler
	TeacherHandler  *httpH.TeacherHandler
	ClassHandler    *httpH.ClassHandler
	LectureHandler  *httpH.LectureHandler
	AuthHandler     *httpH.AuthHandler
	JobHandler      *httpH.JobHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		name := cfg.ServiceName
		if name == "" {
			name = "lecturelens-api"
		}
		r.Use(otelgin.Middleware(name))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", func(c *gin.Context) {
			cfg.Metrics.WriteHTTP(c.Writer, c.Request)
		})
	}

	api := r.Group("/api")
	{
		// Auth
		if cfg.AuthHandler != nil {
			api.POST("/login", cfg.AuthHandler.Login)
			api.GET("/me", cfg.AuthHandler.Me)
		}

		// Analysis
		if cfg.AnalysisHandler != nil {
			api.POST("/upload", cfg.AnalysisHandler.Upload)
			api.GET("/analysis/:lecture_id", cfg.AnalysisHandler.GetReport)
			api.GET("/analysis/:lecture_id/download", cfg.AnalysisHandler.DownloadReport)
			api.POST("/analysis/:lecture_id/rerun", cfg.AnalysisHandler.Rerun)
		}

		// Rubrics
		if cfg.RubricHandler != nil {
			api.POST("/rubrics", cfg.RubricHandler.Upload)
			api.GET("/rubrics", cfg.RubricHandler.List)
			api.GET("/rubrics/:id", cfg.RubricHandler.Get)
			api.DELETE("/rubrics/:id", cfg.RubricHandler.Delete)
		}

		// Schools
		if cfg.SchoolHandler != nil {
			api.POST("/schools", cfg.SchoolHandler.Create)
			api.GET("/schools", cfg.SchoolHandler.List)
			api.GET("/schools/:id", cfg.SchoolHandler.Get)
			api.PATCH("/schools/:id", cfg.SchoolHandler.Update)
			api.DELETE("/schools/:id", cfg.SchoolHandler.Delete)
		}

		// Users
		if cfg.UserHandler != nil {
			api.POST("/users", cfg.UserHandler.Create)
			api.GET("/users", cfg.UserHandler.List)
			api.GET("/users/:id", cfg.UserHandler.Get)
			api.PATCH("/users/:id", cfg.UserHandler.Update)
			api.DELETE("/users/:id", cfg.UserHandler.Delete)
		}

		// Teachers
		if cfg.TeacherHandler != nil {
			api.POST("/teachers", cfg.TeacherHandler.Create)
			api.GET("/teachers", cfg.TeacherHandler.List)
			api.GET("/teachers/:id", cfg.TeacherHandler.Get)
			api.GET("/teachers/:id/avatar", cfg.TeacherHandler.Avatar)
			api.PATCH("/teachers/:id", cfg.TeacherHandler.Update)
			api.DELETE("/teachers/:id", cfg.TeacherHandler.Delete)
		}

		// Classes
		if cfg.ClassHandler != nil {
			api.POST("/classes", cfg.ClassHandler.Create)
			api.GET("/classes", cfg.ClassHandler.List)
			api.GET("/classes/:id", cfg.ClassHandler.Get)
			api.PATCH("/classes/:id", cfg.ClassHandler.Update)
			api.DELETE("/classes/:id", cfg.ClassHandler.Delete)
		}

		// Lectures
		if cfg.LectureHandler != nil {
			api.POST("/lectures", cfg.LectureHandler.Create)
			api.GET("/lectures", cfg.LectureHandler.List)
			api.GET("/lectures/:id", cfg.LectureHandler.Get)
			api.PATCH("/lectures/:id", cfg.LectureHandler.Update)
			api.DELETE("/lectures/:id", cfg.LectureHandler.Delete)
		}

		// Jobs
		if cfg.JobHandler != nil {
			api.GET("/jobs/:id", cfg.JobHandler.GetJob)
		}
	}

	return r
}
