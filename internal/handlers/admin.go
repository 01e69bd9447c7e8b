package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/kbenson/userapi/internal/models"
	"github.com/kbenson/userapi/internal/store"
	"github.com/kbenson/userapi/internal/utils"
)

type AdminHandler struct {
	Store store.Store
}

type statsResp struct {
	TotalUsers   int           `json:"totalUsers"`
	AdminUsers   int           `json:"adminUsers"`
	RegularUsers int           `json:"regularUsers"`
	RecentUsers  []models.User `json:"recentUsers"`
	Timestamp    time.Time     `json:"timestamp"`
}

// Stats returns role counts and the five most recently created users.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	all, err := h.Store.List(r.Context())
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := statsResp{
		TotalUsers:  len(all),
		RecentUsers: []models.User{},
		Timestamp:   time.Now().UTC(),
	}
	for _, u := range all {
		if u.Role == models.RoleAdmin {
			resp.AdminUsers++
		} else {
			resp.RegularUsers++
		}
	}

	recent := make([]models.User, len(all))
	copy(recent, all)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > 5 {
		recent = recent[:5]
	}
	resp.RecentUsers = recent

	utils.JSON(w, http.StatusOK, resp)
}
