package httpserver

import (
	"net/http"
	"strconv"
	"time"

	advertdomain "adboard/backend/internal/domain/advert"
	authdomain "adboard/backend/internal/domain/auth"
	advertusecase "adboard/backend/internal/usecase/advert"
	userusecase "adboard/backend/internal/usecase/user"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	s.router.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Post("/login", s.handleLogin)
		r.Post("/users", s.handleCreateUser)
		r.Get("/adverts/{advertID:[0-9]+}", s.handleGetAdvert)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/users/{userID:[0-9]+}", s.handleGetUser)
			r.Patch("/users/{userID:[0-9]+}", s.handleUpdateUser)
			r.Delete("/users/{userID:[0-9]+}", s.handleDeleteUser)

			r.Post("/adverts", s.handleCreateAdvert)
			r.Patch("/adverts/{advertID:[0-9]+}", s.handleUpdateAdvert)
			r.Delete("/adverts/{advertID:[0-9]+}", s.handleDeleteAdvert)
		})
	})
}

type userView struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	RegistrationTime time.Time `json:"registration_time"`
}

type advertView struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	CreationTime time.Time `json:"creation_time"`
	OwnerID      int64     `json:"owner_id"`
	Owner        *string   `json:"owner"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if !s.bind(w, r, &payload) {
		return
	}

	token, err := s.authService.Login(r.Context(), authdomain.Credentials{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token.ID.String()})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload userPayload
	if !s.bind(w, r, &payload) {
		return
	}

	user, err := s.userService.Register(r.Context(), userusecase.CreateInput{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeDone(w, user.ID)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "userID", authdomain.ErrUserNotFound)
	if !ok {
		return
	}

	user, err := s.userService.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Msg: "success", Data: userView{
		ID:               user.ID,
		Email:            user.Email,
		RegistrationTime: user.RegistrationTime,
	}})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "userID", authdomain.ErrUserNotFound)
	if !ok {
		return
	}
	var payload userPatchPayload
	if !s.bind(w, r, &payload) {
		return
	}

	_, err := s.userService.Update(r.Context(), principalFromContext(r.Context()), id, userusecase.UpdateInput{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeUpdated(w)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "userID", authdomain.ErrUserNotFound)
	if !ok {
		return
	}

	if err := s.userService.Delete(r.Context(), principalFromContext(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}
	writeDeleted(w)
}

func (s *Server) handleCreateAdvert(w http.ResponseWriter, r *http.Request) {
	var payload advertPayload
	if !s.bind(w, r, &payload) {
		return
	}

	item, err := s.advertService.Create(r.Context(), principalFromContext(r.Context()), advertusecase.CreateInput{
		Title:       payload.Title,
		Description: payload.Description,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeDone(w, item.ID)
}

func (s *Server) handleGetAdvert(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "advertID", advertdomain.ErrNotFound)
	if !ok {
		return
	}

	listing, err := s.advertService.Describe(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	view := advertView{
		ID:           listing.Advert.ID,
		Title:        listing.Advert.Title,
		Description:  listing.Advert.Description,
		CreationTime: listing.Advert.CreationTime,
		OwnerID:      listing.Advert.OwnerID,
	}
	if listing.Owner != nil {
		view.Owner = &listing.Owner.Email
	}
	writeJSON(w, http.StatusOK, envelope{Msg: "success", Data: view})
}

func (s *Server) handleUpdateAdvert(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "advertID", advertdomain.ErrNotFound)
	if !ok {
		return
	}
	var payload advertPatchPayload
	if !s.bind(w, r, &payload) {
		return
	}

	_, err := s.advertService.Update(r.Context(), principalFromContext(r.Context()), id, advertusecase.UpdateInput{
		Title:       payload.Title,
		Description: payload.Description,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeUpdated(w)
}

func (s *Server) handleDeleteAdvert(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "advertID", advertdomain.ErrNotFound)
	if !ok {
		return
	}

	if err := s.advertService.Delete(r.Context(), principalFromContext(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}
	writeDeleted(w)
}

// pathID parses a numeric URL parameter. Values that overflow int64 cannot
// name a stored row, so they answer with notFound.
func pathID(w http.ResponseWriter, r *http.Request, param string, notFound error) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		respondError(w, r, notFound)
		return 0, false
	}
	return id, true
}
