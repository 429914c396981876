package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lexihop/lexihop/internal/eventlog"
	"github.com/lexihop/lexihop/internal/profile"
	"github.com/lexihop/lexihop/internal/rewards"
)

func WalletHandler(rew *rewards.Service, children *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		childID := chi.URLParam(r, "childID")
		if err := authorizeChild(r.Context(), children, childID); err != nil {
			writeChildAuthError(w, err)
			return
		}
		wallet, err := rew.Wallet(r.Context(), childID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(wallet)
	}
}

func ShopItemsHandler(rew *rewards.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := rew.ListItems(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(items)
	}
}

func InventoryHandler(rew *rewards.Service, children *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		childID := chi.URLParam(r, "childID")
		if err := authorizeChild(r.Context(), children, childID); err != nil {
			writeChildAuthError(w, err)
			return
		}
		inv, err := rew.Inventory(r.Context(), childID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if inv == nil {
			inv = []rewards.Purchase{}
		}
		_ = json.NewEncoder(w).Encode(inv)
	}
}

func PurchaseHandler(rew *rewards.Service, children *profile.Store, events *eventlog.Repo, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ChildID string `json:"child_id"`
			ItemID  string `json:"item_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := authorizeChild(r.Context(), children, req.ChildID); err != nil {
			writeChildAuthError(w, err)
			return
		}
		p, wallet, err := rew.Purchase(r.Context(), req.ChildID, req.ItemID)
		if err != nil {
			status := http.StatusBadRequest
			switch {
			case errors.Is(err, rewards.ErrInsufficientCarrots):
				status = http.StatusPaymentRequired
			case errors.Is(err, rewards.ErrItemNotFound):
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}
		if err := events.Append(r.Context(), eventlog.TypePurchaseMade, p.ID, p); err != nil {
			log.Warn("purchase event append failed", zap.String("purchase_id", p.ID), zap.Error(err))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"purchase": p, "wallet": wallet})
	}
}

func MysteryBoxHandler(rew *rewards.Service, children *profile.Store, events *eventlog.Repo, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ChildID string `json:"child_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := authorizeChild(r.Context(), children, req.ChildID); err != nil {
			writeChildAuthError(w, err)
			return
		}
		item, wallet, err := rew.OpenMysteryBox(r.Context(), req.ChildID)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, rewards.ErrInsufficientCarrots) {
				status = http.StatusPaymentRequired
			}
			http.Error(w, err.Error(), status)
			return
		}
		if err := events.Append(r.Context(), eventlog.TypeMysteryBoxOpened, req.ChildID, item); err != nil {
			log.Warn("mystery box event append failed", zap.String("child_id", req.ChildID), zap.Error(err))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"item": item, "wallet": wallet})
	}
}
