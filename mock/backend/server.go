package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"drama-platform-client/internal/domain"
)

const apiPrefix = "/api/v1"

type account struct {
	Password string      `json:"password"`
	User     domain.User `json:"user"`
}

type fixture struct {
	Categories []domain.Category      `json:"categories"`
	Dramas     []domain.Drama         `json:"dramas"`
	Popular    []domain.PopularSearch `json:"popular"`
	Users      []account              `json:"users"`
}

type server struct {
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time

	mu          sync.RWMutex
	fx          *fixture
	preferences map[string]map[string][]string // user id -> action -> drama ids
}

func newServer(fx *fixture, secret []byte, tokenTTL time.Duration) *server {
	return &server{
		secret:      secret,
		tokenTTL:    tokenTTL,
		now:         time.Now,
		fx:          fx,
		preferences: make(map[string]map[string][]string),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	mux.HandleFunc("GET "+apiPrefix+"/dramas", s.listDramas)
	mux.HandleFunc("GET "+apiPrefix+"/dramas/hot", s.rankedDramas(byViews))
	mux.HandleFunc("GET "+apiPrefix+"/dramas/new", s.rankedDramas(byRelease))
	mux.HandleFunc("GET "+apiPrefix+"/dramas/trending", s.rankedDramas(byFavorites))
	mux.HandleFunc("GET "+apiPrefix+"/dramas/{id}", s.getDrama)

	mux.HandleFunc("GET "+apiPrefix+"/categories", s.listCategories)
	mux.HandleFunc("GET "+apiPrefix+"/categories/stats", s.categoryStats)

	mux.HandleFunc("POST "+apiPrefix+"/auth/login", s.login)
	mux.HandleFunc("POST "+apiPrefix+"/auth/register", s.register)
	mux.HandleFunc("POST "+apiPrefix+"/auth/logout", s.authed(func(w http.ResponseWriter, _ *http.Request, _ *domain.User) {
		writeData(w, nil)
	}))
	mux.HandleFunc("GET "+apiPrefix+"/auth/profile", s.authed(func(w http.ResponseWriter, _ *http.Request, u *domain.User) {
		writeData(w, u)
	}))
	mux.HandleFunc("GET "+apiPrefix+"/auth/check-username/{username}", s.checkAvailable(func(a account, v string) bool {
		return strings.EqualFold(a.User.Username, v)
	}, "username"))
	mux.HandleFunc("GET "+apiPrefix+"/auth/check-email/{email}", s.checkAvailable(func(a account, v string) bool {
		return strings.EqualFold(a.User.Email, v)
	}, "email"))

	mux.HandleFunc("GET "+apiPrefix+"/search", s.search)
	mux.HandleFunc("GET "+apiPrefix+"/search/suggestions", s.suggestions)
	mux.HandleFunc("GET "+apiPrefix+"/search/popular", s.popular)
	mux.HandleFunc("GET "+apiPrefix+"/search/recommendations/personalized/me", s.authed(s.personalized))
	mux.HandleFunc("GET "+apiPrefix+"/search/recommendations/similar/{id}", s.similar)
	mux.HandleFunc("GET "+apiPrefix+"/search/recommendations/{type}", s.recommendations)
	mux.HandleFunc("GET "+apiPrefix+"/search/rankings/{type}", s.ranking)
	mux.HandleFunc("GET "+apiPrefix+"/search/preferences", s.authed(s.getPreferences))
	mux.HandleFunc("POST "+apiPrefix+"/search/preferences", s.authed(s.updatePreference))

	return mux
}

// Dramas

type dramaOrder func(a, b domain.Drama) int

func byViews(a, b domain.Drama) int     { return compareDesc(a.ViewCount, b.ViewCount) }
func byFavorites(a, b domain.Drama) int { return compareDesc(a.FavoriteCount, b.FavoriteCount) }
func byRating(a, b domain.Drama) int    { return compareDesc(a.Rating, b.Rating) }
func byRelease(a, b domain.Drama) int   { return b.ReleaseDate.Compare(a.ReleaseDate) }

func compareDesc[T int64 | float64](a, b T) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

var sortFields = map[string]dramaOrder{
	"viewCount":     byViews,
	"rating":        byRating,
	"releaseDate":   byRelease,
	"favoriteCount": byFavorites,
}

func (s *server) sorted(order dramaOrder) []domain.Drama {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.fx.Dramas)
	slices.SortStableFunc(out, order)
	return out
}

func (s *server) listDramas(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	order := byViews
	if f, ok := sortFields[q.Get("sort")]; ok {
		order = f
	}
	dramas := s.sorted(order)
	if q.Get("order") == "asc" {
		slices.Reverse(dramas)
	}

	dramas = slices.DeleteFunc(dramas, func(d domain.Drama) bool {
		if c := q.Get("category"); c != "" && d.Category != c {
			return true
		}
		if st := q.Get("status"); st != "" && string(d.Status) != st {
			return true
		}
		if tag := q.Get("tag"); tag != "" && !slices.Contains(d.Tags, tag) {
			return true
		}
		return false
	})

	page, limit := pageParams(q.Get("page"), q.Get("limit"), 20)
	writeData(w, paginate(dramas, page, limit))
}

func (s *server) rankedDramas(order dramaOrder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dramas := s.sorted(order)
		if limit, ok := intParam(r.URL.Query().Get("limit")); ok && limit > 0 && limit < len(dramas) {
			dramas = dramas[:limit]
		}
		writeData(w, dramas)
	}
}

func (s *server) findDrama(id string) (domain.Drama, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := slices.IndexFunc(s.fx.Dramas, func(d domain.Drama) bool { return d.ID == id })
	if i < 0 {
		return domain.Drama{}, false
	}
	return s.fx.Dramas[i], true
}

func (s *server) getDrama(w http.ResponseWriter, r *http.Request) {
	d, ok := s.findDrama(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "DRAMA_NOT_FOUND", "短剧不存在")
		return
	}
	writeData(w, d)
}

// Categories

func (s *server) listCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	categories := slices.Clone(s.fx.Categories)
	s.mu.RUnlock()

	slices.SortStableFunc(categories, func(a, b domain.Category) int { return a.SortOrder - b.SortOrder })
	writeData(w, categories)
}

func (s *server) categoryStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(s.fx.Categories))
	for _, d := range s.fx.Dramas {
		counts[d.Category]++
	}
	writeData(w, map[string]any{
		"totalCategories":  len(s.fx.Categories),
		"totalDramas":      len(s.fx.Dramas),
		"dramasByCategory": counts,
	})
}

// Auth

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Nickname        string `json:"nickname"`
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "请求格式错误")
		return
	}

	s.mu.RLock()
	i := slices.IndexFunc(s.fx.Users, func(a account) bool {
		return strings.EqualFold(a.User.Email, req.Email) && a.Password == req.Password
	})
	var user domain.User
	if i >= 0 {
		user = s.fx.Users[i].User
	}
	s.mu.RUnlock()

	if i < 0 {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "邮箱或密码错误")
		return
	}
	s.writeAuth(w, user)
}

func (s *server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "请求格式错误")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "用户名、邮箱和密码不能为空")
		return
	}
	if req.Password != req.ConfirmPassword {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "两次输入的密码不一致")
		return
	}

	s.mu.Lock()
	taken := slices.ContainsFunc(s.fx.Users, func(a account) bool {
		return strings.EqualFold(a.User.Username, req.Username) || strings.EqualFold(a.User.Email, req.Email)
	})
	var user domain.User
	if !taken {
		now := s.now().UTC()
		user = domain.User{
			ID:        uuid.NewString(),
			Username:  req.Username,
			Email:     req.Email,
			Role:      domain.UserRoleUser,
			Status:    domain.UserStatusActive,
			Profile:   domain.UserProfile{Nickname: req.Nickname},
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.fx.Users = append(s.fx.Users, account{Password: req.Password, User: user})
	}
	s.mu.Unlock()

	if taken {
		writeError(w, http.StatusConflict, "USER_EXISTS", "用户名或邮箱已被注册")
		return
	}
	s.writeAuth(w, user)
}

func (s *server) writeAuth(w http.ResponseWriter, user domain.User) {
	token, err := s.issueToken(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "TOKEN_ERROR", err.Error())
		return
	}
	writeData(w, domain.AuthResult{
		User:        user,
		AccessToken: token,
		ExpiresIn:   int64(s.tokenTTL / time.Second),
	})
}

func (s *server) issueToken(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *server) userFromToken(r *http.Request) (*domain.User, error) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return nil, errors.New("missing bearer token")
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.fx.Users {
		if a.User.ID == claims.Subject {
			u := a.User
			return &u, nil
		}
	}
	return nil, fmt.Errorf("unknown user %q", claims.Subject)
}

type authedHandler func(w http.ResponseWriter, r *http.Request, u *domain.User)

func (s *server) authed(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.userFromToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "登录已过期，请重新登录")
			return
		}
		next(w, r, u)
	}
}

func (s *server) checkAvailable(match func(account, string) bool, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := r.PathValue(param)

		s.mu.RLock()
		taken := slices.ContainsFunc(s.fx.Users, func(a account) bool { return match(a, v) })
		s.mu.RUnlock()

		writeData(w, domain.Availability{Available: !taken})
	}
}

// Search

func (s *server) search(w http.ResponseWriter, r *http.Request) {
	started := s.now()
	q := r.URL.Query()
	term := strings.TrimSpace(q.Get("q"))
	if term == "" {
		writeError(w, http.StatusBadRequest, "MISSING_QUERY", "搜索关键词不能为空")
		return
	}

	var hits []domain.SearchHit
	kind := q.Get("type")

	if kind == "" || kind == string(domain.HitTypeDrama) {
		for _, d := range s.sorted(byViews) {
			if !strings.Contains(d.Title, term) && !strings.Contains(d.Description, term) && !slices.Contains(d.Tags, term) {
				continue
			}
			if c := q.Get("category"); c != "" && d.Category != c {
				continue
			}
			hits = append(hits, domain.SearchHit{
				ID:          d.ID,
				Type:        domain.HitTypeDrama,
				Title:       d.Title,
				Description: d.Description,
				Thumbnail:   d.Poster,
				Score:       d.Rating,
				Highlights:  []string{term},
			})
		}
	}
	if kind == "" || kind == string(domain.HitTypeCategory) {
		s.mu.RLock()
		for _, c := range s.fx.Categories {
			if strings.Contains(c.Name, term) {
				hits = append(hits, domain.SearchHit{ID: c.ID, Type: domain.HitTypeCategory, Title: c.Name, Score: 1})
			}
		}
		s.mu.RUnlock()
	}

	page, limit := pageParams(q.Get("page"), q.Get("limit"), 20)
	total := int64(len(hits))

	writeData(w, domain.SearchResult{
		Query: term,
		Total: total,
		Items: paginate(hits, page, limit),
		Pagination: domain.Pagination{
			Page:  page,
			Limit: limit,
			Pages: domain.ExpectedPages(total, limit),
		},
		ExecutionTime: float64(s.now().Sub(started).Microseconds()) / 1000,
	})
}

func (s *server) suggestions(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	out := []string{}
	if term != "" {
		for _, d := range s.sorted(byViews) {
			if strings.Contains(d.Title, term) {
				out = append(out, d.Title)
			}
			if len(out) == 10 {
				break
			}
		}
	}
	writeData(w, out)
}

func (s *server) popular(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	popular := slices.Clone(s.fx.Popular)
	s.mu.RUnlock()

	if limit, ok := intParam(r.URL.Query().Get("limit")); ok && limit > 0 && limit < len(popular) {
		popular = popular[:limit]
	}
	writeData(w, popular)
}

// Recommendations

var recommendationOrders = map[string]dramaOrder{
	"popular":       byViews,
	"trending":      byFavorites,
	"new":           byRelease,
	"collaborative": byRating,
	"content":       byRating,
}

func (s *server) recommend(w http.ResponseWriter, r *http.Request, kind, userID string, order dramaOrder, keep func(domain.Drama) bool) {
	started := s.now()
	q := r.URL.Query()

	_, limit := pageParams("1", q.Get("limit"), 10)
	items := []domain.RecommendationItem{}
	for _, d := range s.sorted(order) {
		if c := q.Get("category"); c != "" && d.Category != c {
			continue
		}
		if keep != nil && !keep(d) {
			continue
		}
		items = append(items, domain.RecommendationItem{
			Drama:  d,
			Score:  d.Rating / 10,
			Reason: kind,
			Type:   kind,
		})
		if len(items) == limit {
			break
		}
	}

	writeData(w, domain.RecommendationResult{
		Type:          kind,
		Items:         items,
		Total:         len(items),
		UserID:        userID,
		GeneratedAt:   s.now().UTC(),
		Algorithm:     "mock-" + kind,
		ExecutionTime: float64(s.now().Sub(started).Microseconds()) / 1000,
	})
}

func (s *server) recommendations(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("type")
	order, ok := recommendationOrders[kind]
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_TYPE", "不支持的推荐类型")
		return
	}
	s.recommend(w, r, kind, "", order, nil)
}

func (s *server) personalized(w http.ResponseWriter, r *http.Request, u *domain.User) {
	s.mu.RLock()
	liked := s.preferences[u.ID]["like"]
	s.mu.RUnlock()

	s.recommend(w, r, "personalized", u.ID, byRating, func(d domain.Drama) bool {
		return !slices.Contains(liked, d.ID)
	})
}

func (s *server) similar(w http.ResponseWriter, r *http.Request) {
	base, ok := s.findDrama(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "DRAMA_NOT_FOUND", "短剧不存在")
		return
	}
	s.recommend(w, r, "similar", "", byRating, func(d domain.Drama) bool {
		return d.ID != base.ID && d.Category == base.Category
	})
}

// Rankings

var rankingOrders = map[string]dramaOrder{
	"hot":      byViews,
	"rating":   byRating,
	"new":      byRelease,
	"trending": byFavorites,
}

var periodSpans = map[string]time.Duration{
	"daily":   24 * time.Hour,
	"weekly":  7 * 24 * time.Hour,
	"monthly": 30 * 24 * time.Hour,
}

func (s *server) ranking(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("type")
	order, ok := rankingOrders[kind]
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_TYPE", "不支持的排行类型")
		return
	}

	q := r.URL.Query()
	period := q.Get("period")
	if period == "" {
		period = "weekly"
	}
	now := s.now().UTC()
	start := time.Time{}
	if span, ok := periodSpans[period]; ok {
		start = now.Add(-span)
	}

	_, limit := pageParams("1", q.Get("limit"), 50)
	entries := []domain.RankingEntry{}
	for _, d := range s.sorted(order) {
		if c := q.Get("category"); c != "" && d.Category != c {
			continue
		}
		entries = append(entries, domain.RankingEntry{
			Rank:  len(entries) + 1,
			Drama: d,
			Score: float64(d.ViewCount)/1e5 + d.Rating,
			Metrics: domain.RankingMetrics{
				ViewCount:     d.ViewCount,
				Rating:        d.Rating,
				CommentCount:  d.CommentCount,
				FavoriteCount: d.FavoriteCount,
			},
		})
		if len(entries) == limit {
			break
		}
	}

	writeData(w, domain.RankingResult{
		Type:        kind,
		Category:    q.Get("category"),
		Items:       entries,
		GeneratedAt: now,
		Period:      domain.Period{Start: start, End: now},
	})
}

// Preferences

type preferenceRequest struct {
	DramaID string `json:"dramaId"`
	Action  string `json:"action"`
}

func (s *server) getPreferences(w http.ResponseWriter, _ *http.Request, u *domain.User) {
	s.mu.RLock()
	prefs := make(map[string][]string, len(s.preferences[u.ID]))
	for action, ids := range s.preferences[u.ID] {
		prefs[action] = slices.Clone(ids)
	}
	s.mu.RUnlock()

	writeData(w, map[string]any{"userId": u.ID, "actions": prefs})
}

func (s *server) updatePreference(w http.ResponseWriter, r *http.Request, u *domain.User) {
	var req preferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DramaID == "" || req.Action == "" {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "请求格式错误")
		return
	}
	if _, ok := s.findDrama(req.DramaID); !ok {
		writeError(w, http.StatusNotFound, "DRAMA_NOT_FOUND", "短剧不存在")
		return
	}

	s.mu.Lock()
	if s.preferences[u.ID] == nil {
		s.preferences[u.ID] = make(map[string][]string)
	}
	if !slices.Contains(s.preferences[u.ID][req.Action], req.DramaID) {
		s.preferences[u.ID][req.Action] = append(s.preferences[u.ID][req.Action], req.DramaID)
	}
	s.mu.Unlock()

	writeData(w, nil)
}

// Helpers

func intParam(v string) (int, bool) {
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func pageParams(pageStr, limitStr string, defaultLimit int) (page, limit int) {
	page, limit = 1, defaultLimit
	if n, ok := intParam(pageStr); ok && n > 0 {
		page = n
	}
	if n, ok := intParam(limitStr); ok && n > 0 {
		limit = min(n, 100)
	}
	return page, limit
}

func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	return items[start:min(start+limit, len(items))]
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{"success": false, "code": code, "message": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
