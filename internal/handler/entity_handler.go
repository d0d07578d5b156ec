package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"moviedb/internal/models"
	"moviedb/internal/service"
)

// EntityService is what an EntityHandler needs from the service layer.
type EntityService[T any] interface {
	Fields() models.Fields
	List(ctx context.Context, params map[string]string) ([]T, error)
	Get(ctx context.Context, id int) (*T, error)
	Create(ctx context.Context, p models.Patch) (int, error)
	Update(ctx context.Context, id int, p models.Patch) error
	Delete(ctx context.Context, id int) error
}

// EntityHandler handles HTTP requests for one entity type.
type EntityHandler[T any] struct {
	entity string
	svc    EntityService[T]
}

// NewEntityHandler creates a handler. entity names the type in error
// messages.
func NewEntityHandler[T any](entity string, svc EntityService[T]) *EntityHandler[T] {
	return &EntityHandler[T]{entity: entity, svc: svc}
}

// CreatedResponse is returned by create endpoints.
type CreatedResponse struct {
	ID int `json:"id"`
}

// Register mounts the CRUD routes under path.
func (h *EntityHandler[T]) Register(r fiber.Router, path string) {
	r.Get(path, h.List)
	r.Post(path, h.Create)
	r.Get(path+"/:id", h.Get)
	r.Patch(path+"/:id", h.Update)
	r.Put(path+"/:id", h.Update)
	r.Delete(path+"/:id", h.Delete)
}

// List returns all records matching the query string filters.
func (h *EntityHandler[T]) List(c fiber.Ctx) error {
	items, err := h.svc.List(c.Context(), c.Queries())
	if err != nil {
		return writeError(c, h.entity, err)
	}
	return c.JSON(items)
}

// Get returns a single record.
func (h *EntityHandler[T]) Get(c fiber.Ctx) error {
	id, err := h.id(c)
	if err != nil {
		return err
	}

	rec, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return writeError(c, h.entity, err)
	}
	return c.JSON(rec)
}

// Create persists a new record from the JSON body.
func (h *EntityHandler[T]) Create(c fiber.Ctx) error {
	p, err := h.svc.Fields().Parse(c.Body(), false)
	if err != nil {
		return writeError(c, h.entity, err)
	}

	id, err := h.svc.Create(c.Context(), p)
	if err != nil {
		return writeError(c, h.entity, err)
	}
	c.Location(c.Path() + "/" + strconv.Itoa(id))
	return c.Status(fiber.StatusCreated).JSON(CreatedResponse{ID: id})
}

// Update applies the fields present in the JSON body.
func (h *EntityHandler[T]) Update(c fiber.Ctx) error {
	id, err := h.id(c)
	if err != nil {
		return err
	}

	p, err := h.svc.Fields().Parse(c.Body(), true)
	if err != nil {
		return writeError(c, h.entity, err)
	}

	if err := h.svc.Update(c.Context(), id, p); err != nil {
		return writeError(c, h.entity, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Delete removes a record.
func (h *EntityHandler[T]) Delete(c fiber.Ctx) error {
	id, err := h.id(c)
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Context(), id); err != nil {
		return writeError(c, h.entity, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// id parses the :id param. Ids past the integer column range cannot name
// a row, so they are reported as not found.
func (h *EntityHandler[T]) id(c fiber.Ctx) (int, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 32)
	if errors.Is(err, strconv.ErrRange) {
		return 0, fiber.NewError(fiber.StatusNotFound, h.entity+" not found")
	}
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+h.entity+" ID")
	}
	return int(id), nil
}

// movieParent is a director or genre service.
type movieParent interface {
	Movies(ctx context.Context, id int, movies service.MovieLister, field string) ([]models.Movie, error)
}

// RelatedMovies lists the movies referencing the record in :id through
// field.
func (h *EntityHandler[T]) RelatedMovies(parent movieParent, movies service.MovieLister, field string) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, err := h.id(c)
		if err != nil {
			return err
		}

		items, err := parent.Movies(c.Context(), id, movies, field)
		if err != nil {
			return writeError(c, h.entity, err)
		}
		return c.JSON(items)
	}
}
