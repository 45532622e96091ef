package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(
	pollHandler *PollHandler,
	voteHandler *VoteHandler,
	queryHandler *QueryHandler,
	authHandler *AuthHandler,
	userHandler *UserHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if authHandler != nil {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/google/callback", authHandler.GoogleCallback)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
		})
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("welcome"))
		})

		r.Route("/polls", func(r chi.Router) {
			r.Get("/", queryHandler.ListPolls)
			r.Get("/featured", queryHandler.Featured)
			r.Get("/{id}", pollHandler.GetPoll)
			r.Get("/{id}/stats", queryHandler.OptionStats)

			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware)
				r.Post("/", pollHandler.CreatePoll)
				r.Delete("/{id}", pollHandler.DeletePoll)
				r.Post("/{id}/archive", pollHandler.ArchivePoll)
				r.Post("/{id}/unarchive", pollHandler.UnarchivePoll)
				r.Post("/{id}/votes", voteHandler.VoteOnPoll)
				r.Get("/{id}/my-vote", voteHandler.MyVote)
			})
		})

		r.Route("/me", func(r chi.Router) {
			r.Use(AuthMiddleware)
			if userHandler != nil {
				r.Get("/", userHandler.GetMe)
			}
			r.Get("/polls", queryHandler.MyPolls)
			r.Get("/participation", queryHandler.MyParticipation)
		})
	})

	return r
}
