package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/lead"
	"github.com/sells-group/prospect-cli/internal/monitoring"
	"github.com/sells-group/prospect-cli/internal/promote"
	"github.com/sells-group/prospect-cli/pkg/peopledata"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		// Background backlog alerting.
		checker := monitoring.NewChecker(env.Collector, monitoring.NewAlerter(cfg.Alerts), cfg.Alerts)
		go checker.Run(ctx)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func newRouter(env *appEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		snap, err := env.Collector.Collect(req.Context())
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "metrics": snap})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/search/people", searchHandler(env, lead.SearchPeople))
		r.Post("/search/companies", searchHandler(env, lead.SearchCompanies))
		r.Get("/searches/{id}/results", func(w http.ResponseWriter, req *http.Request) {
			rows := env.Archiver.Results(req.Context(), chi.URLParam(req, "id"))
			writeJSON(w, http.StatusOK, map[string]any{"results": rows})
		})
		r.Post("/searches/{id}/promote", promoteHandler(env))

		r.Get("/lists", func(w http.ResponseWriter, req *http.Request) {
			all, err := env.Store.ListLists(req.Context(), cfg.Defaults.OwnerID)
			if err != nil {
				writeErr(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"lists": all})
		})
		r.Post("/lists", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Name        string `json:"name"`
				Description string `json:"description"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Name == "" {
				writeErr(w, http.StatusBadRequest, eris.New("name is required"))
				return
			}
			l := &lead.List{OwnerID: cfg.Defaults.OwnerID, Name: body.Name, Description: body.Description}
			if err := env.Store.CreateList(req.Context(), l); err != nil {
				writeErr(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusCreated, l)
		})
		r.Get("/lists/{id}/companies", func(w http.ResponseWriter, req *http.Request) {
			companies, err := env.Store.ListCompaniesInList(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				writeErr(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"companies": companies})
		})

		r.Get("/companies/{id}", func(w http.ResponseWriter, req *http.Request) {
			company, err := env.Store.GetCompany(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				writeErr(w, http.StatusInternalServerError, err)
				return
			}
			if company == nil {
				writeErr(w, http.StatusNotFound, eris.New("company not found"))
				return
			}
			writeJSON(w, http.StatusOK, company)
		})
		r.Get("/companies/{id}/contacts", func(w http.ResponseWriter, req *http.Request) {
			contacts, err := env.Store.ListContactsByCompany(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				writeErr(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
		})
		r.Patch("/companies/{id}/tags", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Tags []string `json:"tags"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeErr(w, http.StatusBadRequest, eris.New("invalid request body"))
				return
			}
			id := chi.URLParam(req, "id")
			company, err := env.Store.GetCompany(req.Context(), id)
			if err != nil {
				writeErr(w, http.StatusInternalServerError, err)
				return
			}
			if company == nil {
				writeErr(w, http.StatusNotFound, eris.New("company not found"))
				return
			}
			if err := env.Store.SetCompanyTags(req.Context(), id, body.Tags); err != nil {
				writeErr(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"company_id": id, "tags": body.Tags})
		})
		r.Post("/companies/{id}/crm", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			company, err := env.Store.GetCompany(req.Context(), id)
			if err != nil {
				writeErr(w, http.StatusInternalServerError, err)
				return
			}
			if company == nil {
				writeErr(w, http.StatusNotFound, eris.New("company not found"))
				return
			}
			if err := env.Exporter.ExportCRM(req.Context(), env.Hooks, id); err != nil {
				writeErr(w, http.StatusBadGateway, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"company_id": id, "status": "exported"})
		})
		r.Post("/companies/{id}/move", membershipHandler(env, true))
		r.Post("/companies/{id}/add", membershipHandler(env, false))
		r.Post("/companies/{id}/insights", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Kind string `json:"kind"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeErr(w, http.StatusBadRequest, eris.New("invalid request body"))
				return
			}
			kind, err := insightKind(body.Kind)
			if err != nil {
				writeErr(w, http.StatusBadRequest, err)
				return
			}
			ins, err := env.Insights.Generate(req.Context(), chi.URLParam(req, "id"), kind)
			if err != nil {
				writeErr(w, http.StatusBadGateway, err)
				return
			}
			writeJSON(w, http.StatusOK, ins)
		})

		r.Post("/contacts/{id}/outreach", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Template string `json:"template"`
				Send     bool   `json:"send"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeErr(w, http.StatusBadRequest, eris.New("invalid request body"))
				return
			}
			if body.Template == "" {
				body.Template = cfg.Defaults.Template
			}
			contactID := chi.URLParam(req, "id")
			var (
				msg any
				err error
			)
			if body.Send {
				msg, err = env.Outreach.Send(req.Context(), cfg.Defaults.OwnerID, body.Template, contactID)
			} else {
				msg, err = env.Outreach.Render(req.Context(), cfg.Defaults.OwnerID, body.Template, contactID)
			}
			if err != nil {
				writeErr(w, http.StatusBadGateway, err)
				return
			}
			writeJSON(w, http.StatusOK, msg)
		})

		r.Get("/users", func(w http.ResponseWriter, req *http.Request) {
			users, err := env.Store.ListUsers(req.Context())
			if err != nil {
				writeErr(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"users": users})
		})
		r.Post("/users", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Email   string `json:"email"`
				Name    string `json:"name"`
				IsAdmin bool   `json:"is_admin"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Email == "" {
				writeErr(w, http.StatusBadRequest, eris.New("email is required"))
				return
			}
			existing, err := env.Store.GetUserByEmail(req.Context(), body.Email)
			if err != nil {
				writeErr(w, http.StatusInternalServerError, err)
				return
			}
			if existing != nil {
				writeErr(w, http.StatusConflict, eris.New("user already exists"))
				return
			}
			u := &lead.User{Email: body.Email, Name: body.Name, IsAdmin: body.IsAdmin}
			if err := env.Store.CreateUser(req.Context(), u); err != nil {
				writeErr(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusCreated, u)
		})
		r.Patch("/users/{id}/admin", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				IsAdmin bool `json:"is_admin"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeErr(w, http.StatusBadRequest, eris.New("invalid request body"))
				return
			}
			if err := env.Store.SetUserAdmin(req.Context(), chi.URLParam(req, "id"), body.IsAdmin); err != nil {
				writeErr(w, http.StatusNotFound, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"is_admin": body.IsAdmin})
		})
		r.Delete("/users/{id}", func(w http.ResponseWriter, req *http.Request) {
			if err := env.Store.DeleteUser(req.Context(), chi.URLParam(req, "id")); err != nil {
				writeErr(w, http.StatusNotFound, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})

	return r
}

func searchHandler(env *appEnv, searchType string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var q peopledata.Query
		if err := json.NewDecoder(req.Body).Decode(&q); err != nil {
			writeErr(w, http.StatusBadRequest, eris.New("invalid request body"))
			return
		}

		var (
			resp *peopledata.SearchResponse
			err  error
		)
		if searchType == lead.SearchPeople {
			resp, err = env.Provider.SearchPeople(req.Context(), q)
		} else {
			resp, err = env.Provider.SearchCompanies(req.Context(), q)
		}
		if err != nil {
			writeErr(w, http.StatusBadGateway, err)
			return
		}

		params, err := json.Marshal(q.Values())
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		rec, err := env.Archiver.Archive(req.Context(), cfg.Defaults.OwnerID, searchType, params, resp.Results())
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"search_id":  rec.ID,
			"archived":   rec.ResultCount,
			"pagination": resp.Pagination,
		})
	}
}

func promoteHandler(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Tokens      []string `json:"tokens"`
			ListID      string   `json:"list_id"`
			Upsert      bool     `json:"upsert"`
			Refresh     bool     `json:"refresh"`
			Concurrency int      `json:"concurrency"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || len(body.Tokens) == 0 {
			writeErr(w, http.StatusBadRequest, eris.New("tokens are required"))
			return
		}
		if body.ListID == "" {
			body.ListID = cfg.Defaults.ListID
		}

		p := env.Promoter(promote.Options{UpsertContacts: body.Upsert, Refresh: body.Refresh})
		results := p.PromoteBatch(req.Context(), cfg.Defaults.OwnerID,
			chi.URLParam(req, "id"), body.Tokens, body.ListID,
			promote.BatchOptions{Concurrency: body.Concurrency})

		writeJSON(w, http.StatusOK, map[string]any{"results": results})
	}
}

func membershipHandler(env *appEnv, move bool) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			ListID string `json:"list_id"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.ListID == "" {
			writeErr(w, http.StatusBadRequest, eris.New("list_id is required"))
			return
		}

		companyID := chi.URLParam(req, "id")
		var err error
		if move {
			err = env.Lists.Move(req.Context(), companyID, body.ListID)
		} else {
			err = env.Lists.Add(req.Context(), companyID, body.ListID)
		}
		if err != nil {
			writeErr(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"company_id": companyID, "list_id": body.ListID,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
