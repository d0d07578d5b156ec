package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"

	"moviedb/internal/middleware"
	"moviedb/internal/models"
	"moviedb/internal/service"
)

// Services groups the entity services the HTTP layer is built on.
type Services struct {
	Movies    *service.MovieService
	Directors *service.DirectorService
	Genres    *service.GenreService
}

// Options holds optional HTTP collaborators.
type Options struct {
	RateLimiter *middleware.RateLimiter
	SwaggerYAML []byte
	AccessLog   bool
}

// NewApp creates the Fiber app with middleware and all API routes.
func NewApp(svcs Services, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "moviedb",
		ServerHeader: "moviedb",
		ErrorHandler: ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	if opts.AccessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New())
	if opts.RateLimiter != nil {
		app.Use(opts.RateLimiter.Handler())
	}

	// Swagger docs
	if opts.SwaggerYAML != nil {
		RegisterSwagger(app, opts.SwaggerYAML)
	}

	app.Get("/health", Health)

	movies := NewEntityHandler[models.Movie]("movie", svcs.Movies)
	directors := NewEntityHandler[models.Director]("director", svcs.Directors)
	genres := NewEntityHandler[models.Genre]("genre", svcs.Genres)

	// API routes
	api := app.Group("/api/v1")
	movies.Register(api, "/movies")
	directors.Register(api, "/directors")
	genres.Register(api, "/genres")
	api.Get("/directors/:id/movies", directors.RelatedMovies(svcs.Directors, svcs.Movies, models.FieldDirectorID))
	api.Get("/genres/:id/movies", genres.RelatedMovies(svcs.Genres, svcs.Movies, models.FieldGenreID))

	return app
}

// Health returns service health status.
func Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "moviedb",
	})
}
