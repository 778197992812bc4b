package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"plansey/internal/model"
	"plansey/internal/rest/res"
	"plansey/internal/service"
)

func pathID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func NewRegisterHandler(log *zap.Logger, auth Auth, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in RegisterIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		user, err := auth.Register(ctx, service.RegisterInput{
			Email:     in.Email,
			Password:  in.Password,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Role:      model.Role(in.Role),
		})
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, map[string]any{"userId": user.ID}, http.StatusCreated)
	}
}

func NewLoginHandler(log *zap.Logger, auth Auth, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in LoginIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		session, err := auth.Login(ctx, in.Email, in.Password)
		if err != nil {
			WriteErr(w, log, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    session.Token,
			Path:     "/",
			Expires:  session.ExpiresAt,
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
		res.Json(w, LoginOut{
			Token:     session.Token,
			ExpiresAt: session.ExpiresAt,
			User:      toUserOut(session.User),
		}, http.StatusOK)
	}
}

func NewDashboardHandler(log *zap.Logger, dashboards Dashboards, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFrom(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		d, err := dashboards.Build(ctx, identity.UserID)
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, toDashboardOut(d), http.StatusOK)
	}
}

func NewCreateWeddingHandler(log *zap.Logger, weddings Weddings, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFrom(r.Context())

		in, ok := decodeWedding(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		wedding, err := weddings.Create(ctx, identity.UserID, in)
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, map[string]any{"weddingId": wedding.ID, "wedding": toWeddingOut(wedding)}, http.StatusCreated)
	}
}

func NewCurrentWeddingHandler(log *zap.Logger, weddings Weddings, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFrom(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		wedding, err := weddings.Current(ctx, identity.UserID)
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, map[string]any{"wedding": toWeddingOut(wedding)}, http.StatusOK)
	}
}

func NewGetWeddingHandler(log *zap.Logger, weddings Weddings, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFrom(r.Context())
		id, ok := pathID(r, "id")
		if !ok {
			res.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		wedding, err := weddings.Get(ctx, identity.UserID, id)
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, map[string]any{"wedding": toWeddingOut(wedding)}, http.StatusOK)
	}
}

func NewUpdateWeddingHandler(log *zap.Logger, weddings Weddings, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFrom(r.Context())
		id, ok := pathID(r, "id")
		if !ok {
			res.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		in, ok := decodeWedding(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		wedding, err := weddings.Update(ctx, identity.UserID, id, in)
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, map[string]any{"wedding": toWeddingOut(wedding)}, http.StatusOK)
	}
}

func NewListTasksHandler(log *zap.Logger, checklists Checklists, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFrom(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		cl, err := checklists.ForUser(ctx, identity.UserID)
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, toChecklistOut(cl), http.StatusOK)
	}
}

func NewUpdateTaskStatusHandler(log *zap.Logger, checklists Checklists, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFrom(r.Context())

		weddingID, ok := pathID(r, "weddingId")
		if !ok {
			res.Error(w, "invalid wedding id", http.StatusBadRequest)
			return
		}
		taskID, ok := pathID(r, "taskId")
		if !ok {
			res.Error(w, "invalid task id", http.StatusBadRequest)
			return
		}

		var in TaskStatusIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		wt, err := checklists.UpdateStatus(ctx, identity.UserID, weddingID, taskID, service.StatusUpdate{
			Status:      model.TaskStatus(in.Status),
			Deadline:    in.Deadline.Value,
			SetDeadline: in.Deadline.Set,
		})
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, toWeddingTaskOut(wt), http.StatusOK)
	}
}

func decodeWedding(w http.ResponseWriter, r *http.Request) (service.WeddingInput, bool) {
	var body WeddingIn
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if errors.Is(err, errInvalidBudget) {
			res.Error(w, errInvalidBudget.Error(), http.StatusBadRequest)
		} else {
			res.Error(w, "invalid json", http.StatusBadRequest)
		}
		return service.WeddingInput{}, false
	}
	in, err := body.toInput()
	if err != nil {
		res.Error(w, err.Error(), http.StatusBadRequest)
		return service.WeddingInput{}, false
	}
	return in, true
}

func NewPingHandler(log *zap.Logger, db Pinger, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			log.Warn("ping failed", zap.Error(err))
			res.Json(w, map[string]any{"status": "down"}, http.StatusServiceUnavailable)
			return
		}
		res.Json(w, map[string]any{"status": "ok"}, http.StatusOK)
	}
}
