package handlers

import (
	"client-registry/app"
	"client-registry/middleware"
	"client-registry/models"
	"client-registry/services"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// searchPage is the decoded form of a cached search.
type searchPage struct {
	Page       int                   `json:"page"`
	TotalPages int                   `json:"total_pages"`
	Criteria   models.ClientCriteria `json:"criteria"`
	Clients    []models.Client       `json:"clients"`
}

func toSearchPage(s models.ClientSearch) (*searchPage, error) {
	clients, err := models.DecodeClients(s)
	if err != nil {
		return nil, err
	}
	return &searchPage{Page: s.Page, TotalPages: s.TotalPages, Criteria: s.Criteria, Clients: clients}, nil
}

// clientBody is the writable part of a client.
type clientBody struct {
	Active *bool  `json:"client_active"`
	Name   string `json:"client_name"`
}

type selectRequest struct {
	ID int64 `json:"id_client"`
}

// parseSearch reads criteria and page from the query string.
func parseSearch(c *fiber.Ctx) (models.ClientCriteria, int, error) {
	var criteria models.ClientCriteria

	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return criteria, 0, errors.New("page must be a number")
		}
		page = n
	}

	if raw := c.Query("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return criteria, 0, errors.New("id must be a number")
		}
		criteria.ID = &id
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return criteria, 0, errors.New("active must be true or false")
		}
		criteria.Active = &active
	}
	if c.Context().QueryArgs().Has("name") {
		name := c.Query("name")
		criteria.Name = &name
	}

	return criteria, page, nil
}

func pathID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, errors.New("client ID must be a number")
	}
	return id, nil
}

// withManager runs fn against the caller's session manager.
func withManager(c *fiber.Ctx, fn func(m *services.ClientManager) error) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not attached")
	}
	return sess.Do(fn)
}

// mutationResponse reports a successful write. A stale cached search is not a
// failure of the write, so it is surfaced as a warning next to the result.
func mutationResponse(c *fiber.Ctx, respond func(*fiber.Ctx, fiber.Map) error, message, failure string, client *models.Client, last *models.ClientSearch, err error) error {
	body := fiber.Map{"message": message}
	if client != nil {
		body["client"] = client
	}

	var replayErr *services.ReplayError
	if errors.As(err, &replayErr) {
		body["warning"] = replayErr.Error()
	} else if err != nil {
		return clientError(c, failure, err)
	}

	if last != nil {
		page, decodeErr := toSearchPage(*last)
		if decodeErr != nil {
			return serverErrorWithDetails(c, "Failed to decode cached search", decodeErr)
		}
		body["search"] = page
	}

	return respond(c, body)
}

// SearchClients runs a paginated criteria search and caches it for the session
func SearchClients(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		criteria, page, err := parseSearch(c)
		if err != nil {
			return badRequest(c, err.Error())
		}

		var search models.ClientSearch
		err = withManager(c, func(m *services.ClientManager) error {
			var err error
			search, err = m.SearchBy(c.UserContext(), criteria, page)
			return err
		})
		if err != nil {
			return clientError(c, "Failed to search clients", err)
		}

		result, err := toSearchPage(search)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to decode search result", err)
		}
		return success(c, fiber.Map{"search": result})
	}
}

// GetLastSearch returns the session's cached search as last refreshed
func GetLastSearch(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var last *models.ClientSearch
		_ = withManager(c, func(m *services.ClientManager) error {
			last = m.LastSearch()
			return nil
		})
		if last == nil {
			return notFound(c, "No search has been run in this session")
		}

		result, err := toSearchPage(*last)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to decode cached search", err)
		}
		return success(c, fiber.Map{"search": result})
	}
}

// GetClient looks a client up by identifier
func GetClient(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return badRequest(c, err.Error())
		}

		var client *models.Client
		err = withManager(c, func(m *services.ClientManager) error {
			var err error
			client, err = m.SearchByID(c.UserContext(), id)
			return err
		})
		if err != nil {
			return clientError(c, "Failed to fetch client", err)
		}
		if client == nil {
			return notFound(c, "Client not found")
		}

		return success(c, fiber.Map{"client": client})
	}
}

// GetSelectedClient returns the client last selected in this session
func GetSelectedClient(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var selected *models.Client
		_ = withManager(c, func(m *services.ClientManager) error {
			selected = m.LastSelected()
			return nil
		})
		if selected == nil {
			return notFound(c, "No client selected")
		}
		return success(c, fiber.Map{"client": selected})
	}
}

// SelectClient loads a stored client and remembers it as the session's selection
func SelectClient(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req selectRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		var client *models.Client
		err := withManager(c, func(m *services.ClientManager) error {
			found, err := m.SearchByID(c.UserContext(), req.ID)
			if err != nil || found == nil {
				return err
			}
			m.SetLastSelected(*found)
			client = found
			return nil
		})
		if err != nil {
			return clientError(c, "Failed to select client", err)
		}
		if client == nil {
			return notFound(c, "Client not found")
		}

		return success(c, fiber.Map{"client": client})
	}
}

// CreateClient adds a new active client
func CreateClient(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req clientBody
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		client := models.NewClient(req.Name)
		if req.Active != nil {
			client.Active = *req.Active
		}

		var last *models.ClientSearch
		err := withManager(c, func(m *services.ClientManager) error {
			err := m.Add(c.UserContext(), &client)
			last = m.LastSearch()
			return err
		})

		return mutationResponse(c, created, "Client created", "Failed to create client", &client, last, err)
	}
}

// UpdateClient replaces the writable fields of a stored client
func UpdateClient(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return badRequest(c, err.Error())
		}

		var req clientBody
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		var last *models.ClientSearch
		var client models.Client
		err = withManager(c, func(m *services.ClientManager) error {
			stored, err := m.SearchByID(c.UserContext(), id)
			if err != nil {
				return err
			}
			if stored == nil {
				return services.ErrClientNotFound
			}

			client = *stored
			client.Name = req.Name
			if req.Active != nil {
				client.Active = *req.Active
			}

			err = m.Modify(c.UserContext(), &client)
			last = m.LastSearch()
			return err
		})
		if errors.Is(err, services.ErrClientNotFound) {
			return notFound(c, "Client not found")
		}

		return mutationResponse(c, success, "Client updated", "Failed to update client", &client, last, err)
	}
}

// DropClient marks a client inactive
func DropClient(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return badRequest(c, err.Error())
		}

		var last *models.ClientSearch
		var client models.Client
		err = withManager(c, func(m *services.ClientManager) error {
			stored, err := m.SearchByID(c.UserContext(), id)
			if err != nil {
				return err
			}
			if stored == nil {
				return services.ErrClientNotFound
			}

			client = *stored
			err = m.Drop(c.UserContext(), &client)
			last = m.LastSearch()
			return err
		})
		if errors.Is(err, services.ErrClientNotFound) {
			return notFound(c, "Client not found")
		}

		return mutationResponse(c, success, "Client dropped", "Failed to drop client", &client, last, err)
	}
}

// DeleteClient removes a client. Deleting an unknown identifier succeeds.
func DeleteClient(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return badRequest(c, err.Error())
		}

		var last *models.ClientSearch
		err = withManager(c, func(m *services.ClientManager) error {
			err := m.Delete(c.UserContext(), &models.Client{ID: &id})
			last = m.LastSearch()
			return err
		})

		return mutationResponse(c, success, "Client deleted", "Failed to delete client", nil, last, err)
	}
}
